package jsonld

import (
	"strconv"
	"strings"

	"github.com/geoknoesis/jsonld-go/rdf"
)

// nodeTerm returns the RDF term for a node identifier.
func nodeTerm(id string) rdf.Term {
	if isBlankNodeID(id) {
		return rdf.NewBlankNode(id)
	}
	return rdf.IRI{Value: id}
}

// termID is the inverse of nodeTerm.
func termID(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return v.Value
	case rdf.BlankNode:
		return v.String()
	case nil:
		return ""
	}
	return t.String()
}

// rdfEmitter converts an expanded tree to statements, passing each to emit.
type rdfEmitter struct {
	namer *UniqueNamer
	emit  func(rdf.Quad)
}

func (r *rdfEmitter) toRDF(element Value, subject rdf.Term, property string, graph rdf.Term) {
	switch elem := element.(type) {
	case Array:
		for _, item := range elem {
			r.toRDF(item, subject, property, graph)
		}
	case String:
		// @type values
		if subject == nil {
			return
		}
		object := nodeTerm(string(elem))
		if b, ok := object.(rdf.BlankNode); ok {
			object = rdf.NewBlankNode(r.namer.Name(b.String()))
		}
		r.emit(rdf.Quad{S: subject, P: rdf.IRI{Value: property}, O: object, G: graph})
	case Object:
		switch {
		case elem.Has(kwValue):
			if subject == nil {
				return
			}
			r.emit(rdf.Quad{S: subject, P: rdf.IRI{Value: property}, O: valueLiteral(elem), G: graph})
		case elem.Has(kwList):
			r.toRDF(listChain(asArray(elem[kwList])), subject, property, graph)
		default:
			r.nodeToRDF(elem, subject, property, graph)
		}
	}
}

// listChain builds the rdf:first/rdf:rest node chain for items.
func listChain(items Array) Object {
	tail := Object{kwID: String(rdf.RDFNil)}
	for i := len(items) - 1; i >= 0; i-- {
		tail = Object{
			rdf.RDFFirst: Array{items[i]},
			rdf.RDFRest:  Array{tail},
		}
	}
	return tail
}

func (r *rdfEmitter) nodeToRDF(node Object, subject rdf.Term, property string, graph rdf.Term) {
	var object rdf.Term
	id, _ := stringOf(node[kwID])
	if isBlankNode(node) {
		object = rdf.NewBlankNode(r.namer.Name(id))
	} else {
		object = rdf.IRI{Value: id}
	}

	if subject != nil {
		r.emit(rdf.Quad{S: subject, P: rdf.IRI{Value: property}, O: object, G: graph})
	}

	for _, prop := range node.Keys() {
		value := node[prop]
		switch {
		case prop == kwType:
			r.toRDF(value, object, rdf.RDFType, graph)
		case prop == kwGraph:
			r.toRDF(value, nil, "", object)
		case isKeyword(prop):
		default:
			r.toRDF(value, object, prop, graph)
		}
	}
}

// valueLiteral converts a value object to a literal, inferring the datatype
// of native values.
func valueLiteral(elem Object) rdf.Literal {
	datatype, _ := stringOf(elem[kwType])
	var lexical string
	switch v := elem[kwValue].(type) {
	case Bool:
		lexical = strconv.FormatBool(bool(v))
		if datatype == "" {
			datatype = rdf.XSDBoolean
		}
	case Number:
		if v.IsInteger() {
			lexical = strconv.FormatInt(v.Int64(), 10)
			if datatype == "" {
				datatype = rdf.XSDInteger
			}
		} else {
			lexical = canonicalDouble(v.Float64())
			if datatype == "" {
				datatype = rdf.XSDDouble
			}
		}
	case String:
		lexical = string(v)
	}
	if datatype == "" {
		datatype = rdf.XSDString
	}

	lit := rdf.Literal{Lexical: lexical, Datatype: rdf.IRI{Value: datatype}}
	if lang, ok := stringOf(elem[kwLanguage]); ok && datatype == rdf.XSDString {
		lit.Lang = lang
	}
	return lit
}

// canonicalDouble renders f as d.dddE±n with trailing mantissa zeros and
// leading exponent zeros removed.
func canonicalDouble(f float64) string {
	s := strconv.FormatFloat(f, 'E', 15, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	mantissa = strings.TrimRight(mantissa, "0")
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "E" + sign + exp
}

// toRDF returns the statements of an expanded tree in emission order.
func toRDF(expanded Value) []rdf.Quad {
	var quads []rdf.Quad
	r := &rdfEmitter{
		namer: NewUniqueNamer("_:t"),
		emit:  func(q rdf.Quad) { quads = append(quads, q) },
	}
	r.toRDF(expanded, nil, "", nil)
	return quads
}
