package jsonld

import "log/slog"

// expander holds the per-call state of an expansion run.
type expander struct {
	opts  Options
	namer *UniqueNamer
}

func newExpander(opts Options) *expander {
	return &expander{opts: opts, namer: NewUniqueNamer("_:t")}
}

func (e *expander) checkDepth(depth int, element Value) error {
	if e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		return &Error{Code: ErrCodeDepthExceeded, Message: "input nested too deeply", Value: element}
	}
	return nil
}

// expand removes all context-dependent shorthand from element. A nil result
// means the element expands to nothing.
func (e *expander) expand(ctx *ActiveContext, property string, element Value, depth int) (Value, error) {
	if err := e.checkDepth(depth, element); err != nil {
		return nil, err
	}

	switch elem := element.(type) {
	case nil, Null:
		return nil, nil
	case Array:
		return e.expandArray(ctx, property, elem, false, depth)
	case Object:
		if ctx.containerOf(property) == kwLanguage && !elem.Has(kwValue) {
			return e.expandLanguageMap(ctx, elem, depth)
		}
		return e.expandObject(ctx, property, elem, depth)
	}

	// free-floating scalars are dropped
	if property == "" {
		return nil, nil
	}
	return expandValue(ctx, property, element, e.opts.Base), nil
}

// expandArray expands each element, dropping nil results and splicing nested
// arrays. Inside a list, nested arrays and lists are rejected.
func (e *expander) expandArray(ctx *ActiveContext, property string, arr Array, insideList bool, depth int) (Value, error) {
	out := Array{}
	for _, item := range arr {
		v, err := e.expand(ctx, property, item, depth+1)
		if err != nil {
			return nil, err
		}
		if insideList {
			if _, ok := v.(Array); ok || isListObject(v) {
				return nil, listOfListsError(item)
			}
		}
		switch x := v.(type) {
		case nil:
		case Array:
			out = append(out, x...)
		default:
			out = append(out, x)
		}
	}
	return out, nil
}

func listOfListsError(v Value) *Error {
	return &Error{Code: ErrCodeListOfLists, Message: "lists of lists are not permitted", Value: v}
}

// expandLanguageMap turns a language-keyed object into language-tagged
// values.
func (e *expander) expandLanguageMap(ctx *ActiveContext, elem Object, depth int) (Value, error) {
	out := Array{}
	for _, lang := range elem.Keys() {
		v, err := e.expandLanguageValue(ctx, elem[lang], lang, depth+1)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case nil:
		case Array:
			out = append(out, x...)
		default:
			out = append(out, x)
		}
	}
	return out, nil
}

func (e *expander) expandLanguageValue(ctx *ActiveContext, v Value, lang string, depth int) (Value, error) {
	if err := e.checkDepth(depth, v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil, Null:
		return nil, nil
	case Array:
		out := Array{}
		for _, item := range x {
			tagged, err := e.expandLanguageValue(ctx, item, lang, depth+1)
			if err != nil {
				return nil, err
			}
			if tagged != nil {
				out = append(out, tagged)
			}
		}
		return out, nil
	case Object:
		expanded, err := e.expand(ctx, "", x, depth+1)
		if err != nil {
			return nil, err
		}
		return tagLanguage(expanded, lang), nil
	}
	return Object{kwValue: v, kwLanguage: String(lang)}, nil
}

// tagLanguage adds lang to every value object nested in v.
func tagLanguage(v Value, lang string) Value {
	switch x := v.(type) {
	case Array:
		out := make(Array, len(x))
		for i, item := range x {
			out[i] = tagLanguage(item, lang)
		}
		return out
	case Object:
		out := make(Object, len(x)+1)
		if x.Has(kwValue) {
			for k, val := range x {
				out[k] = val
			}
			out[kwLanguage] = String(lang)
			return out
		}
		for k, val := range x {
			out[k] = tagLanguage(val, lang)
		}
		return out
	}
	return v
}

func (e *expander) expandObject(ctx *ActiveContext, property string, elem Object, depth int) (Value, error) {
	if local, ok := elem[kwContext]; ok {
		var err error
		if ctx, err = processContext(ctx, local, e.opts.Base); err != nil {
			return nil, err
		}
	}

	rval := Object{}
	for _, key := range elem.Keys() {
		if key == kwContext {
			continue
		}
		prop := expandIRI(ctx, key, "", true, false)
		if !isAbsoluteIRI(prop) && !isKeyword(prop) {
			e.opts.Logger.Debug("dropping key without IRI mapping", slog.String("key", key))
			continue
		}

		value := elem[key]
		if IsNull(value) && prop != kwValue {
			continue
		}
		if err := validateKeywordValue(prop, value); err != nil {
			return nil, err
		}

		activeProperty := key
		var err error
		switch prop {
		case kwList:
			activeProperty = property
			if arr, ok := value.(Array); ok {
				value, err = e.expandArray(ctx, property, arr, true, depth+1)
			} else {
				value, err = e.expand(ctx, property, value, depth+1)
				if err == nil && isListObject(value) {
					err = listOfListsError(elem[key])
				}
			}
		case kwSet:
			activeProperty = property
			value, err = e.expand(ctx, property, value, depth+1)
		case kwValue:
			if IsNull(value) {
				value = Null{}
				break
			}
			value, err = e.expand(ctx, key, value, depth+1)
		default:
			value, err = e.expand(ctx, key, value, depth+1)
		}
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}

		if prop != kwList && !isListObject(value) && ctx.containerOf(activeProperty) == kwList {
			value = Object{kwList: asArray(value)}
		}

		if prop == kwType {
			value = unwrapTypeIDs(value)
		}

		useArray := prop != kwID && prop != kwType && prop != kwValue && prop != kwLanguage
		addValue(rval, prop, value, useArray, true)
	}

	return e.finishObject(rval)
}

// finishObject validates and simplifies an expanded object.
func (e *expander) finishObject(rval Object) (Value, error) {
	switch {
	case rval.Has(kwValue):
		if len(rval) > 2 || (len(rval) == 2 && !rval.Has(kwType) && !rval.Has(kwLanguage)) {
			return nil, syntaxError("an element containing @value may only also contain @type or @language", rval)
		}
		if t, ok := rval[kwType]; ok {
			if _, isString := t.(String); !isString {
				return nil, syntaxError("the @type of a value object must be a string", rval)
			}
		}
		if IsNull(rval[kwValue]) {
			return nil, nil
		}
	case rval.Has(kwType):
		if _, ok := rval[kwType].(Array); !ok {
			rval[kwType] = Array{rval[kwType]}
		}
	case rval.Has(kwSet) || rval.Has(kwList):
		if len(rval) != 1 {
			return nil, syntaxError("an element containing @set or @list may not contain other properties", rval)
		}
		if set, ok := rval[kwSet]; ok {
			return set, nil
		}
	case rval.Has(kwLanguage) && len(rval) == 1:
		return nil, nil
	}

	if e.opts.AddBlankNodeIDs && isSubject(rval) && !rval.Has(kwID) {
		rval[kwID] = String(e.namer.Name(""))
	}
	return rval, nil
}

func validateKeywordValue(prop string, value Value) error {
	switch prop {
	case kwID:
		if _, ok := value.(String); !ok {
			return syntaxError("@id value must be a string", value)
		}
	case kwType:
		if !validTypeValue(value) {
			return syntaxError("@type value must be a string, a subject reference, an array of strings or subject references, or an empty object", value)
		}
	case kwGraph:
		switch value.(type) {
		case Object, Array:
		default:
			return syntaxError("@graph value must be an object or an array", value)
		}
	case kwValue:
		switch value.(type) {
		case Object, Array:
			return syntaxError("@value value must not be an object or an array", value)
		}
	case kwLanguage:
		if _, ok := value.(String); !ok {
			return syntaxError("@language value must be a string", value)
		}
	}
	return nil
}

func validTypeValue(v Value) bool {
	switch x := v.(type) {
	case String:
		return true
	case Object:
		return len(x) == 0 || x.Has(kwID)
	case Array:
		for _, item := range x {
			if _, ok := item.(String); ok {
				continue
			}
			if o, ok := item.(Object); !ok || !o.Has(kwID) {
				return false
			}
		}
		return true
	}
	return false
}

// unwrapTypeIDs replaces {"@id": iri} type values by iri.
func unwrapTypeIDs(v Value) Value {
	if o, ok := v.(Object); ok && o.Has(kwID) {
		return o[kwID]
	}
	arr, ok := v.(Array)
	if !ok {
		return v
	}
	out := make(Array, len(arr))
	for i, item := range arr {
		if o, ok := item.(Object); ok && o.Has(kwID) {
			out[i] = o[kwID]
		} else {
			out[i] = item
		}
	}
	return out
}

// expandValue applies the coercion and keyword rules for a scalar value of
// property.
func expandValue(ctx *ActiveContext, property string, value Value, base string) Value {
	prop := expandIRI(ctx, property, "", true, false)
	s, isString := value.(String)
	switch prop {
	case kwID:
		if isString {
			return String(expandIRI(ctx, string(s), base, false, false))
		}
		return value
	case kwType:
		if isString {
			return String(expandIRI(ctx, string(s), base, false, true))
		}
		return value
	}

	typ := ctx.typeOf(property)
	if typ == kwID || prop == kwGraph {
		if isString {
			return Object{kwID: String(expandIRI(ctx, string(s), base, false, false))}
		}
		return value
	}
	if isKeyword(prop) {
		return value
	}

	out := Object{kwValue: value}
	if typ != "" {
		out[kwType] = String(typ)
	} else if lang, ok := ctx.languageOf(property); ok {
		out[kwLanguage] = String(lang)
	}
	return out
}
