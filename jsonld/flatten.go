package jsonld

import "sort"

// graphMap indexes subjects by graph name, then by subject id.
type graphMap map[string]map[string]Object

func newGraphMap(graphs ...string) graphMap {
	g := graphMap{}
	for _, name := range graphs {
		g[name] = map[string]Object{}
	}
	return g
}

// subjectName returns the id of a node object, relabeling blank nodes.
func subjectName(node Object, namer *UniqueNamer) string {
	id, _ := stringOf(node[kwID])
	if isBlankNode(node) {
		return namer.Name(id)
	}
	return id
}

// flatten walks an expanded tree and merges every node object into
// graphs[graph]. Embedded nodes are replaced by references. When list is
// non-nil, values and references found at this level are appended to it.
func (g graphMap) flatten(input Value, graph string, namer *UniqueNamer, name string, list *Array) {
	if arr, ok := input.(Array); ok {
		for _, item := range arr {
			g.flatten(item, graph, namer, "", list)
		}
		return
	}

	node, ok := input.(Object)
	if !ok || node.Has(kwValue) {
		if list != nil {
			*list = append(*list, input)
		}
		return
	}

	if name == "" {
		name = subjectName(node, namer)
	}
	if list != nil {
		*list = append(*list, Object{kwID: String(name)})
	}

	subjects := g[graph]
	subject, ok := subjects[name]
	if !ok {
		subject = Object{}
		subjects[name] = subject
	}
	subject[kwID] = String(name)

	for _, prop := range node.Keys() {
		switch {
		case prop == kwID:
			continue
		case prop == kwGraph:
			if _, ok := g[name]; !ok {
				g[name] = map[string]Object{}
			}
			target := name
			if graph == graphMerged {
				target = graph
			}
			g.flatten(node[prop], target, namer, "", nil)
			continue
		case prop != kwType && isKeyword(prop):
			subject[prop] = node[prop]
			continue
		}

		values := asArray(node[prop])
		if len(values) == 0 && !subject.Has(prop) {
			subject[prop] = Array{}
		}
		for _, o := range values {
			if isSubject(o) || isSubjectReference(o) {
				id := subjectName(o.(Object), namer)
				addValue(subject, prop, Object{kwID: String(id)}, true, false)
				g.flatten(o, graph, namer, id, nil)
				continue
			}
			if lst, ok := o.(Object); ok && lst.Has(kwList) {
				items := Array{}
				g.flatten(lst[kwList], graph, namer, "", &items)
				o = Object{kwList: items}
			} else if s, ok := o.(String); ok && prop == kwType && isBlankNodeID(string(s)) {
				o = String(namer.Name(string(s)))
			}
			addValue(subject, prop, o, true, false)
		}
	}
}

// flattened renders the default graph as a list of subjects sorted by id,
// with each named graph attached to its subject as @graph.
func (g graphMap) flattened() Array {
	defaultGraph := g[graphDefault]
	if defaultGraph == nil {
		defaultGraph = map[string]Object{}
	}
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == graphDefault || name == graphMerged {
			continue
		}
		subject, ok := defaultGraph[name]
		if !ok {
			subject = Object{kwID: String(name)}
			defaultGraph[name] = subject
		}
		members := Array{}
		for _, id := range sortedSubjectIDs(g[name]) {
			members = append(members, g[name][id])
		}
		subject[kwGraph] = members
	}

	out := Array{}
	for _, id := range sortedSubjectIDs(defaultGraph) {
		out = append(out, defaultGraph[id])
	}
	return out
}

func sortedSubjectIDs(subjects map[string]Object) []string {
	ids := make([]string, 0, len(subjects))
	for id := range subjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
