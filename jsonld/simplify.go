package jsonld

import "strings"

// simplifyContext derives a context mapping short names to the http(s)
// property and type IRIs used in the expanded tree.
func simplifyContext(expanded Value, ctx Object) {
	switch v := expanded.(type) {
	case Array:
		for _, item := range v {
			simplifyContext(item, ctx)
		}
	case Object:
		for _, key := range v.Keys() {
			if key == kwContext {
				continue
			}
			val := v[key]
			if isHTTPIRI(key) {
				addSimpleTerm(ctx, key, val)
			}
			if key == kwType {
				for _, t := range asArray(val) {
					if s, ok := stringOf(t); ok {
						addSimpleTerm(ctx, s, Object{kwID: String("")})
					}
				}
				continue
			}
			switch val.(type) {
			case Array, Object:
				simplifyContext(val, ctx)
			}
		}
	}
}

func isHTTPIRI(s string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(s, scheme) && len(s) > len(scheme) {
			return true
		}
	}
	return false
}

// addSimpleTerm maps the local name of iri to iri, inferring the container
// and @id coercion from the first value. Clashing names get "_" appended.
func addSimpleTerm(ctx Object, iri string, sample Value) {
	idx := strings.LastIndex(iri, "#")
	if idx < 0 {
		idx = strings.LastIndex(iri, "/")
	}
	name := iri[idx+1:]
	if name == "" {
		return
	}

	entry := Object{kwID: String(iri)}
	v := sample
	for {
		if arr, ok := v.(Array); ok && len(arr) > 0 {
			v = arr[0]
			continue
		}
		if obj, ok := v.(Object); ok && obj.Has(kwList) {
			v = obj[kwList]
			entry[kwContainer] = String(kwList)
			continue
		}
		if obj, ok := v.(Object); ok && obj.Has(kwSet) {
			v = obj[kwSet]
			entry[kwContainer] = String(kwSet)
			continue
		}
		break
	}
	if obj, ok := v.(Object); ok && obj.Has(kwID) {
		entry[kwType] = String(kwID)
	}

	var def Value = entry
	if len(entry) == 1 {
		def = String(iri)
	}
	for {
		existing, ok := ctx[name]
		if !ok {
			ctx[name] = def
			return
		}
		if Equal(existing, def) {
			return
		}
		name += "_"
	}
}
