package jsonld

import (
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"
)

// JSON-LD keywords.
const (
	kwContext     = "@context"
	kwContainer   = "@container"
	kwDefault     = "@default"
	kwEmbed       = "@embed"
	kwExplicit    = "@explicit"
	kwGraph       = "@graph"
	kwID          = "@id"
	kwLanguage    = "@language"
	kwList        = "@list"
	kwOmitDefault = "@omitDefault"
	kwPreserve    = "@preserve"
	kwSet         = "@set"
	kwType        = "@type"
	kwValue       = "@value"
	kwVocab       = "@vocab"

	// graph map keys used by flattening and framing
	graphDefault = "@default"
	graphMerged  = "@merged"

	nullMarker = "@null"
)

var keywords = stringset.New(
	kwContext, kwContainer, kwDefault, kwEmbed, kwExplicit, kwGraph, kwID,
	kwLanguage, kwList, kwOmitDefault, kwPreserve, kwSet, kwType, kwValue, kwVocab,
)

func isKeyword(s string) bool { return keywords.Contains(s) }

func isAbsoluteIRI(s string) bool { return strings.Contains(s, ":") }

func isBlankNodeID(s string) bool { return strings.HasPrefix(s, "_:") }

// lessShortest orders strings by length, then lexicographically.
func lessShortest(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func sortShortest(s []string) {
	sort.Slice(s, func(i, j int) bool { return lessShortest(s[i], s[j]) })
}

// asArray wraps a non-array value in a single-element Array.
func asArray(v Value) Array {
	if a, ok := v.(Array); ok {
		return a
	}
	return Array{v}
}

func asObject(v Value) (Object, bool) {
	o, ok := v.(Object)
	return o, ok
}

func stringOf(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

func isValueObject(v Value) bool {
	o, ok := v.(Object)
	return ok && o.Has(kwValue)
}

func isListObject(v Value) bool {
	o, ok := v.(Object)
	return ok && o.Has(kwList)
}

// isBlankNode reports whether v is a node object without an IRI: either its
// @id is a blank node identifier or it has none and is not a value, set or
// list object.
func isBlankNode(v Value) bool {
	o, ok := v.(Object)
	if !ok {
		return false
	}
	if id, ok := o[kwID]; ok {
		s, _ := stringOf(id)
		return isBlankNodeID(s)
	}
	return len(o) == 0 || !(o.Has(kwValue) || o.Has(kwSet) || o.Has(kwList))
}

// isSubject reports whether v is a node object with more than a bare @id.
func isSubject(v Value) bool {
	o, ok := v.(Object)
	if !ok || o.Has(kwValue) || o.Has(kwSet) || o.Has(kwList) {
		return false
	}
	return len(o) > 1 || !o.Has(kwID)
}

// isSubjectReference reports whether v is an object holding only @id.
func isSubjectReference(v Value) bool {
	o, ok := v.(Object)
	return ok && len(o) == 1 && o.Has(kwID)
}

// addValue adds v to subject[property]. Arrays are added element-wise.
// propertyIsArray forces an array; duplicates are skipped unless allowed.
func addValue(subject Object, property string, v Value, propertyIsArray, allowDuplicate bool) {
	if arr, ok := v.(Array); ok {
		if len(arr) == 0 && propertyIsArray && !subject.Has(property) {
			subject[property] = Array{}
		}
		for _, e := range arr {
			addValue(subject, property, e, propertyIsArray, allowDuplicate)
		}
		return
	}
	existing, ok := subject[property]
	if !ok {
		if propertyIsArray {
			subject[property] = Array{v}
		} else {
			subject[property] = v
		}
		return
	}
	has := !allowDuplicate && hasValue(subject, property, v)
	arr, isArr := existing.(Array)
	if !isArr && (!has || propertyIsArray) {
		arr = Array{existing}
		subject[property] = arr
	}
	if !has {
		subject[property] = append(arr, v)
	}
}

func hasProperty(subject Object, property string) bool {
	v, ok := subject[property]
	if !ok {
		return false
	}
	if arr, isArr := v.(Array); isArr {
		return len(arr) > 0
	}
	return true
}

// hasValue reports whether subject[property] contains v.
func hasValue(subject Object, property string, v Value) bool {
	if !hasProperty(subject, property) {
		return false
	}
	existing := subject[property]
	if o, ok := existing.(Object); ok && o.Has(kwList) {
		existing = o[kwList]
	}
	if arr, ok := existing.(Array); ok {
		for _, e := range arr {
			if compareValues(v, e) {
				return true
			}
		}
		return false
	}
	if _, ok := v.(Array); ok {
		return false
	}
	return compareValues(v, existing)
}

// compareValues reports whether two values are equal, comparing @value
// objects by value, type and language, and node objects by @id.
func compareValues(a, b Value) bool {
	if Equal(a, b) {
		return true
	}
	ao, aok := a.(Object)
	bo, bok := b.(Object)
	if !aok || !bok {
		return false
	}
	if ao.Has(kwValue) && bo.Has(kwValue) {
		return Equal(ao[kwValue], bo[kwValue]) &&
			Equal(ao[kwType], bo[kwType]) &&
			Equal(ao[kwLanguage], bo[kwLanguage])
	}
	if ao.Has(kwID) && bo.Has(kwID) {
		return Equal(ao[kwID], bo[kwID])
	}
	return false
}

// removeValue removes every value of subject[property] that compares equal
// to v.
func removeValue(subject Object, property string, v Value, propertyIsArray bool) {
	var values Array
	for _, e := range asArray(subject[property]) {
		if !compareValues(e, v) {
			values = append(values, e)
		}
	}
	switch {
	case len(values) == 0:
		delete(subject, property)
	case len(values) == 1 && !propertyIsArray:
		subject[property] = values[0]
	default:
		subject[property] = values
	}
}
