package jsonld

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/geoknoesis/jsonld-go/rdf"
)

// nativeNumber matches lexical forms that may convert to a JSON number.
var nativeNumber = regexp.MustCompile(`^[+-]?[0-9]+((?:\.?[0-9]+((?:E?[+-]?[0-9]+)|)|))$`)

// listEntry records the rdf:first/rdf:rest links of one list node and the
// reference object that points at the list head. badRest holds an rdf:rest
// object that is neither a blank node nor rdf:nil.
type listEntry struct {
	head    Object
	first   Value
	rest    string
	badRest string
}

type rdfGraph struct {
	subjects map[string]Object
	lists    map[string]*listEntry
}

func newRDFGraph() *rdfGraph {
	return &rdfGraph{subjects: map[string]Object{}, lists: map[string]*listEntry{}}
}

func (g *rdfGraph) list(id string) *listEntry {
	e, ok := g.lists[id]
	if !ok {
		e = &listEntry{}
		g.lists[id] = e
	}
	return e
}

// fromRDF builds expanded JSON-LD from statements: default graph subjects in
// id order, each named graph attached to its subject as @graph.
func fromRDF(quads []rdf.Quad, opts Options) (Array, error) {
	graphs := map[string]*rdfGraph{"": newRDFGraph()}
	defaultGraph := graphs[""]

	for _, q := range quads {
		s := termID(q.S)
		p := q.P.Value
		name := termID(q.G)

		g, ok := graphs[name]
		if !ok {
			g = newRDFGraph()
			graphs[name] = g
		}

		switch p {
		case rdf.RDFFirst:
			g.list(s).first = rdfToObject(q.O, opts)
			continue
		case rdf.RDFRest:
			switch o := q.O.(type) {
			case rdf.BlankNode:
				g.list(s).rest = o.String()
			case rdf.IRI:
				if o.Value != rdf.RDFNil {
					g.list(s).badRest = o.String()
				}
			default:
				g.list(s).badRest = q.O.String()
			}
			continue
		}

		if name != "" {
			if _, ok := defaultGraph.subjects[name]; !ok {
				defaultGraph.subjects[name] = Object{kwID: String(name)}
			}
		}

		subject, ok := g.subjects[s]
		if !ok {
			subject = Object{kwID: String(s)}
			g.subjects[s] = subject
		}

		if p == rdf.RDFType && !opts.UseRdfType {
			addValue(subject, kwType, String(termID(q.O)), true, false)
			continue
		}

		object := rdfToObject(q.O, opts)
		addValue(subject, p, object, true, false)
		if b, ok := q.O.(rdf.BlankNode); ok {
			// a blank node object may be the head of a list
			if e := g.list(b.String()); e.head == nil {
				e.head = object.(Object)
			}
		}
	}

	for _, g := range graphs {
		if err := g.buildLists(); err != nil {
			return nil, err
		}
	}

	output := Array{}
	for _, id := range sortedSubjectIDs(defaultGraph.subjects) {
		subject := defaultGraph.subjects[id]
		if named, ok := graphs[id]; ok && id != "" {
			members := Array{}
			for _, sid := range sortedSubjectIDs(named.subjects) {
				members = append(members, named.subjects[sid])
			}
			subject[kwGraph] = members
		}
		output = append(output, subject)
	}
	return output, nil
}

// buildLists replaces every list head reference by a @list object holding
// the items reached through rdf:rest.
func (g *rdfGraph) buildLists() error {
	ids := make([]string, 0, len(g.lists))
	for id := range g.lists {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		e := g.lists[id]
		if e.head == nil || e.first == nil {
			continue
		}
		items := Array{e.first}
		seen := map[string]bool{id: true}
		for {
			if e.badRest != "" {
				return &Error{Code: ErrCodeInvalidRDFList, Message: "rdf:rest must be a blank node or rdf:nil", Term: e.badRest}
			}
			if e.rest == "" {
				break
			}
			rest := e.rest
			next, ok := g.lists[rest]
			if !ok || next.first == nil || seen[rest] {
				return &Error{Code: ErrCodeInvalidRDFList, Message: "invalid RDF list entry", Term: rest}
			}
			seen[rest] = true
			items = append(items, next.first)
			e = next
		}
		head := g.lists[id].head
		delete(head, kwID)
		head[kwList] = items
	}
	return nil
}

// rdfToObject converts a statement object to an expanded JSON-LD value.
func rdfToObject(o rdf.Term, opts Options) Value {
	switch v := o.(type) {
	case rdf.IRI:
		if v.Value == rdf.RDFNil {
			return Object{kwList: Array{}}
		}
		return Object{kwID: String(v.Value)}
	case rdf.BlankNode:
		return Object{kwID: String(v.String())}
	case rdf.Literal:
		return literalToValue(v, opts)
	}
	return Null{}
}

// literalToValue converts a literal to a value object. With UseNativeTypes,
// booleans, integers and doubles whose lexical form round-trips become
// native values; anything else keeps its datatype.
func literalToValue(lit rdf.Literal, opts Options) Object {
	out := Object{kwValue: String(lit.Lexical)}
	if lit.Lang != "" {
		out[kwLanguage] = String(lit.Lang)
		return out
	}

	datatype := lit.DatatypeIRI()
	if datatype == rdf.XSDString {
		return out
	}
	if opts.UseNativeTypes {
		if native, ok := nativeValue(lit.Lexical, datatype); ok {
			out[kwValue] = native
			return out
		}
	}
	out[kwType] = String(datatype)
	return out
}

func nativeValue(lexical, datatype string) (Value, bool) {
	switch datatype {
	case rdf.XSDBoolean:
		switch lexical {
		case "true":
			return Bool(true), true
		case "false":
			return Bool(false), true
		}
	case rdf.XSDInteger:
		if !nativeNumber.MatchString(lexical) {
			return nil, false
		}
		n, err := strconv.ParseInt(lexical, 10, 64)
		if err == nil && strconv.FormatInt(n, 10) == lexical {
			return Int(n), true
		}
	case rdf.XSDDouble:
		if !nativeNumber.MatchString(lexical) {
			return nil, false
		}
		f, err := strconv.ParseFloat(lexical, 64)
		if err == nil && canonicalDouble(f) == lexical {
			return Float(f), true
		}
	}
	return nil, false
}
