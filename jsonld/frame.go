package jsonld

import (
	"log/slog"

	"bitbucket.org/creachadair/stringset"
)

// frameParent is where framing output is attached: a node or list object,
// or the top-level result.
type frameParent struct {
	node Object
	list *Array
}

type embedRecord struct {
	parent   frameParent
	property string
}

// framer is the per-call framing state.
type framer struct {
	opts     Options
	subjects map[string]Object
	embeds   map[string]embedRecord
}

// frame selects and nests the subjects of the expanded input that match the
// expanded frame.
func frame(input, frameValue Value, opts Options) (Array, error) {
	graphs := newGraphMap(graphDefault, graphMerged)
	graphs.flatten(input, graphDefault, NewUniqueNamer("_:t"), "", nil)
	graphs.flatten(input, graphMerged, NewUniqueNamer("_:t"), "", nil)

	f := &framer{
		opts:     opts,
		subjects: graphs[graphMerged],
		embeds:   map[string]embedRecord{},
	}
	framed := Array{}
	if err := f.frame(sortedSubjectIDs(f.subjects), frameValue, frameParent{list: &framed}, ""); err != nil {
		return nil, err
	}
	return framed, nil
}

func validateFrame(frameValue Value) (Object, error) {
	arr, ok := frameValue.(Array)
	if ok && len(arr) == 1 {
		if obj, ok := arr[0].(Object); ok {
			return obj, nil
		}
	}
	return nil, syntaxError("a JSON-LD frame must be a single object", frameValue)
}

// frameFlag reads an expanded boolean framing keyword.
func frameFlag(frameObj Object, key string, def bool) bool {
	arr := asArray(frameObj[key])
	if !frameObj.Has(key) || len(arr) == 0 {
		return def
	}
	if b, ok := arr[0].(Bool); ok {
		return bool(b)
	}
	if v, ok := arr[0].(Object); ok {
		if b, ok := v[kwValue].(Bool); ok {
			return bool(b)
		}
	}
	return def
}

func (f *framer) frame(ids []string, frameValue Value, parent frameParent, property string) error {
	frameObj, err := validateFrame(frameValue)
	if err != nil {
		return err
	}

	var matches []string
	for _, id := range ids {
		if filterSubject(f.subjects[id], frameObj) {
			matches = append(matches, id)
		}
	}
	if property == "" {
		f.opts.Logger.Debug("frame matched subjects", slog.Int("subjects", len(ids)), slog.Int("matches", len(matches)))
	}

	embedDefault := frameFlag(frameObj, kwEmbed, f.opts.Embed)
	explicit := frameFlag(frameObj, kwExplicit, f.opts.Explicit)
	declared := stringset.New(frameObj.Keys()...)

	for _, id := range matches {
		if property == "" {
			f.embeds = map[string]embedRecord{}
		}

		output := Object{kwID: String(id)}
		embed := embedDefault

		if existing, ok := f.embeds[id]; embed && ok {
			// only replace an embed that has already been attached to its
			// parent, otherwise the subject would appear twice
			embed = false
			if existing.parent.list != nil {
				for _, o := range *existing.parent.list {
					if compareValues(output, o) {
						embed = true
						break
					}
				}
			} else if hasValue(existing.parent.node, existing.property, output) {
				embed = true
			}
			if embed {
				f.removeEmbed(id)
			}
		}

		if !embed {
			addFrameOutput(parent, property, output)
			continue
		}

		f.embeds[id] = embedRecord{parent: parent, property: property}

		subject := f.subjects[id]
		for _, prop := range subject.Keys() {
			if isKeyword(prop) {
				output[prop] = Clone(subject[prop])
				continue
			}
			if !declared.Contains(prop) {
				if !explicit {
					f.embedValues(subject, prop, output)
				}
				continue
			}

			for _, o := range asArray(subject[prop]) {
				if lst, ok := o.(Object); ok && lst.Has(kwList) {
					list := Object{kwList: Array{}}
					addFrameOutput(frameParent{node: output}, prop, list)
					for _, item := range asArray(lst[kwList]) {
						if isSubjectReference(item) {
							ref, _ := stringOf(item.(Object)[kwID])
							if err := f.frame([]string{ref}, frameObj[prop], frameParent{node: list}, kwList); err != nil {
								return err
							}
							continue
						}
						addFrameOutput(frameParent{node: list}, kwList, Clone(item))
					}
					continue
				}

				if isSubjectReference(o) {
					ref, _ := stringOf(o.(Object)[kwID])
					if err := f.frame([]string{ref}, frameObj[prop], frameParent{node: output}, prop); err != nil {
						return err
					}
					continue
				}
				addFrameOutput(frameParent{node: output}, prop, Clone(o))
			}
		}

		// defaults for declared properties the subject lacks
		for _, prop := range frameObj.Keys() {
			if isKeyword(prop) || output.Has(prop) {
				continue
			}
			sub := asArray(frameObj[prop])
			if len(sub) == 0 {
				continue
			}
			next, ok := sub[0].(Object)
			if !ok || frameFlag(next, kwOmitDefault, f.opts.OmitDefault) {
				continue
			}
			var preserve Value = String(nullMarker)
			if def, ok := next[kwDefault]; ok {
				preserve = Clone(def)
			}
			output[prop] = Object{kwPreserve: preserve}
		}

		addFrameOutput(parent, property, output)
	}
	return nil
}

// embedValues copies subject[property] into output, embedding referenced
// subjects that are not embedded yet.
func (f *framer) embedValues(subject Object, property string, output Object) {
	for _, o := range asArray(subject[property]) {
		if lst, ok := o.(Object); ok && lst.Has(kwList) {
			list := Object{kwList: Array{}}
			addFrameOutput(frameParent{node: output}, property, list)
			f.embedValues(lst, kwList, list)
			continue
		}

		if !isSubjectReference(o) {
			addFrameOutput(frameParent{node: output}, property, Clone(o))
			continue
		}

		id, _ := stringOf(o.(Object)[kwID])
		if _, embedded := f.embeds[id]; embedded {
			addFrameOutput(frameParent{node: output}, property, o)
			continue
		}
		f.embeds[id] = embedRecord{parent: frameParent{node: output}, property: property}

		node := Object{}
		s := f.subjects[id]
		for _, prop := range s.Keys() {
			if isKeyword(prop) {
				node[prop] = Clone(s[prop])
				continue
			}
			f.embedValues(s, prop, node)
		}
		addFrameOutput(frameParent{node: output}, property, node)
	}
}

func addFrameOutput(parent frameParent, property string, output Value) {
	if parent.node != nil {
		addValue(parent.node, property, output, true, true)
		return
	}
	*parent.list = append(*parent.list, output)
}

// removeEmbed replaces the existing embed of id by a reference and drops the
// embeds that depended on it.
func (f *framer) removeEmbed(id string) {
	existing := f.embeds[id]
	ref := Object{kwID: String(id)}

	if list := existing.parent.list; list != nil {
		for i, o := range *list {
			if compareValues(o, ref) {
				(*list)[i] = ref
				break
			}
		}
	} else {
		parent := existing.parent.node
		_, isArray := parent[existing.property].(Array)
		removeValue(parent, existing.property, ref, isArray)
		addValue(parent, existing.property, ref, isArray, true)
	}

	f.removeDependents(id)
}

func (f *framer) removeDependents(id string) {
	for next, rec := range f.embeds {
		if rec.parent.node == nil {
			continue
		}
		if parentID, _ := stringOf(rec.parent.node[kwID]); parentID == id {
			delete(f.embeds, next)
			f.removeDependents(next)
		}
	}
}

// filterSubject reports whether subject matches frameObj, by @type or, when
// the frame has no types or the wildcard type, by the presence of every
// declared property.
func filterSubject(subject, frameObj Object) bool {
	if types, ok := frameObj[kwType]; ok && !isWildcardType(types) {
		for _, t := range asArray(types) {
			if hasValue(subject, kwType, t) {
				return true
			}
		}
		return false
	}

	for _, key := range frameObj.Keys() {
		if key == kwID {
			return false
		}
		if !isKeyword(key) && !subject.Has(key) {
			return false
		}
	}
	return true
}

func isWildcardType(types Value) bool {
	arr, ok := types.(Array)
	if !ok || len(arr) != 1 {
		return false
	}
	_, ok = arr[0].(Object)
	return ok
}

// removePreserve replaces @preserve markers in compacted framing output by
// their default values. The null marker becomes JSON null.
func removePreserve(ctx *ActiveContext, input Value, compactArrays bool) Value {
	switch v := input.(type) {
	case Array:
		out := Array{}
		for _, item := range v {
			if r := removePreserve(ctx, item, compactArrays); r != nil {
				out = append(out, r)
			}
		}
		return out
	case Object:
		if preserved, ok := v[kwPreserve]; ok {
			if s, ok := preserved.(String); ok && string(s) == nullMarker {
				return nil
			}
			return preserved
		}
		if v.Has(kwValue) {
			return v
		}
		out := make(Object, len(v))
		for _, key := range v.Keys() {
			res := removePreserve(ctx, v[key], compactArrays)
			if res == nil {
				out[key] = Null{}
				continue
			}
			if arr, ok := res.(Array); ok && len(arr) == 1 && compactArrays && key != kwList {
				if container := ctx.containerOf(key); container != kwSet && container != kwList {
					res = arr[0]
				}
			}
			out[key] = res
		}
		return out
	}
	return input
}
