package jsonld

import "strings"

type compacter struct {
	opts Options
}

// compact applies ctx to an expanded element. property is the compacted
// term pointing at element, "" at the top level.
func (c *compacter) compact(ctx *ActiveContext, property string, element Value) (Value, error) {
	switch elem := element.(type) {
	case Array:
		out := Array{}
		for _, item := range elem {
			v, err := c.compact(ctx, property, item)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, v)
			}
		}
		if len(out) == 1 && c.opts.CompactArrays {
			if container := ctx.containerOf(property); container != kwList && container != kwSet {
				return out[0], nil
			}
		}
		return out, nil
	case Object:
		if elem.Has(kwValue) {
			return compactValue(ctx, property, elem), nil
		}
		if isSubjectReference(elem) && (ctx.typeOf(property) == kwID || property == compactIRI(ctx, kwGraph, nil, true)) {
			id, _ := stringOf(elem[kwID])
			return String(compactIRI(ctx, id, nil, false)), nil
		}
		return c.compactNode(ctx, elem)
	}
	return element, nil
}

func compactValue(ctx *ActiveContext, property string, elem Object) Value {
	typ := ctx.typeOf(property)
	lang, hasLang := ctx.languageOf(property)
	value := elem[kwValue]

	if len(elem) == 1 {
		if _, isString := value.(String); !hasLang || !isString {
			return value
		}
		return Object{ctx.alias(kwValue): value}
	}

	if t, ok := stringOf(elem[kwType]); ok && typ != "" && t == typ {
		return value
	}
	if l, ok := stringOf(elem[kwLanguage]); ok && hasLang && l == lang {
		return value
	}

	out := Object{ctx.alias(kwValue): value}
	if t, ok := stringOf(elem[kwType]); ok {
		out[ctx.alias(kwType)] = String(compactIRI(ctx, t, nil, true))
	} else if l, ok := elem[kwLanguage]; ok {
		out[ctx.alias(kwLanguage)] = l
	}
	return out
}

func (c *compacter) compactNode(ctx *ActiveContext, elem Object) (Value, error) {
	rval := Object{}
	for _, key := range elem.Keys() {
		value := elem[key]

		if key == kwID || key == kwType {
			isType := key == kwType
			var compacted Value
			switch v := value.(type) {
			case String:
				compacted = String(compactIRI(ctx, string(v), nil, isType))
			case Array:
				types := Array{}
				for _, item := range v {
					s, _ := stringOf(item)
					types = append(types, String(compactIRI(ctx, s, nil, isType)))
				}
				compacted = types
			default:
				compacted = value
			}
			prop := compactIRI(ctx, key, nil, isType)
			arr, isArr := compacted.(Array)
			addValue(rval, prop, compacted, (isArr && len(arr) == 0) || !c.opts.CompactArrays && isArr, true)
			continue
		}

		values, ok := value.(Array)
		if !ok {
			// keyword values other than @id and @type, such as @preserve
			// markers or a bare @graph object
			values = Array{value}
		}
		if len(values) == 0 {
			addValue(rval, compactIRI(ctx, key, nil, true), Array{}, true, true)
		}

		for _, v := range values {
			list, isList := v.(Object)
			isList = isList && list.Has(kwList)
			prop := compactIRI(ctx, key, v, true)
			if isList {
				v = list[kwList]
			}

			compacted, err := c.compact(ctx, prop, v)
			if err != nil {
				return nil, err
			}

			container := ctx.containerOf(prop)
			if isList {
				if rval.Has(prop) && c.opts.Strict {
					return nil, &Error{
						Code:    ErrCodeAmbiguousListCompaction,
						Message: "more than one @list compacts to the same term",
						Term:    prop,
						Value:   elem,
					}
				}
				if container != kwList {
					compacted = Object{ctx.alias(kwList): asArray(compacted)}
				}
			}

			arr, isArr := compacted.(Array)
			useArray := container == kwSet || container == kwList || (isArr && len(arr) == 0) || !c.opts.CompactArrays
			addValue(rval, prop, compacted, useArray, true)
		}
	}
	return rval, nil
}

// compactIRI selects the term, CURIE or keyword alias for iri. value is the
// expanded value the IRI will be paired with, or nil. Keys and @type values
// try @vocab before CURIEs; other values try CURIEs first.
func compactIRI(ctx *ActiveContext, iri string, value Value, isKey bool) string {
	if iri == "" {
		return iri
	}
	if isKeyword(iri) {
		return ctx.alias(iri)
	}

	var terms []string
	highest := 0
	listContainer := false
	isList := isListObject(value)
	for _, term := range ctx.Terms() {
		def := ctx.terms[term]
		if def.ID != iri {
			continue
		}
		switch {
		case isList && def.Container == kwSet:
			continue
		case !isList && def.Container == kwList && value != nil:
			continue
		case isList && listContainer && def.Container != kwList:
			continue
		}

		rank := rankTerm(ctx, def, value)
		if rank <= 0 {
			continue
		}
		if def.Container == kwSet {
			rank++
		}
		if isList && !listContainer && def.Container == kwList {
			listContainer = true
			terms = append(terms[:0], term)
			highest = rank
			continue
		}
		if rank >= highest {
			if rank > highest {
				terms = terms[:0]
				highest = rank
			}
			terms = append(terms, term)
		}
	}

	if len(terms) == 0 {
		if isKey {
			if suffix, ok := vocabSuffix(ctx, iri); ok {
				return suffix
			}
			terms = curies(ctx, iri)
		} else {
			terms = curies(ctx, iri)
			if len(terms) == 0 {
				if suffix, ok := vocabSuffix(ctx, iri); ok {
					return suffix
				}
			}
		}
	}

	if len(terms) == 0 {
		return iri
	}
	sortShortest(terms)
	return terms[0]
}

// vocabSuffix strips @vocab from iri when the remainder is not a term.
func vocabSuffix(ctx *ActiveContext, iri string) (string, bool) {
	if ctx.vocab == "" || !strings.HasPrefix(iri, ctx.vocab) {
		return "", false
	}
	suffix := iri[len(ctx.vocab):]
	if _, isTerm := ctx.terms[suffix]; isTerm {
		return "", false
	}
	return suffix, true
}

// curies returns prefix:suffix candidates for iri from terms whose IRI ends
// with '/' or '#' and is a proper prefix of iri.
func curies(ctx *ActiveContext, iri string) []string {
	var out []string
	for _, term := range ctx.Terms() {
		if strings.Contains(term, ":") {
			continue
		}
		id := ctx.terms[term].ID
		if !(strings.HasSuffix(id, "/") || strings.HasSuffix(id, "#")) || id == iri || !strings.HasPrefix(iri, id) {
			continue
		}
		curie := term + ":" + iri[len(id):]
		if _, isTerm := ctx.terms[curie]; !isTerm {
			out = append(out, curie)
		}
	}
	return out
}

// rankTerm scores how well def fits value: 3 is an exact match of type and
// language rules, 0 means the term cannot be used.
func rankTerm(ctx *ActiveContext, def TermDefinition, value Value) int {
	if value == nil {
		return 3
	}
	obj, _ := value.(Object)

	if list, ok := obj[kwList]; ok {
		items := asArray(list)
		if len(items) == 0 {
			if def.Container == kwList {
				return 1
			}
			return 0
		}
		sum := 0
		for _, item := range items {
			sum += rankTerm(ctx, def, item)
		}
		return sum
	}

	plain := def.Type == "" && !def.HasLanguage

	if v, ok := obj[kwValue]; ok {
		if t, hasType := obj[kwType]; hasType {
			if s, _ := stringOf(t); def.Type != "" && s == def.Type {
				return 3
			}
			if plain {
				return 1
			}
			return 0
		}

		if _, isString := v.(String); !isString {
			if plain {
				return 2
			}
			return 1
		}

		l, hasLang := obj[kwLanguage]
		if !hasLang {
			if (def.HasLanguage && def.Language == "") || (plain && ctx.language == "") {
				return 3
			}
			return 0
		}

		lang, _ := stringOf(l)
		if (def.HasLanguage && def.Language == lang) || (plain && ctx.language != "" && ctx.language == lang) {
			return 3
		}
		if plain {
			return 1
		}
		return 0
	}

	if def.Type == kwID {
		return 3
	}
	if plain {
		return 1
	}
	return 0
}
