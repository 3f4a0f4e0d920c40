package rdf

import "strings"

// Vocabulary IRIs used by JSON-LD RDF conversion.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

	RDFType  = RDFNamespace + "type"
	RDFFirst = RDFNamespace + "first"
	RDFRest  = RDFNamespace + "rest"
	RDFNil   = RDFNamespace + "nil"

	XSDString  = XSDNamespace + "string"
	XSDBoolean = XSDNamespace + "boolean"
	XSDInteger = XSDNamespace + "integer"
	XSDDouble  = XSDNamespace + "double"
)

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// Term is a value that can appear in RDF statements.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI in N-Quads form.
func (i IRI) String() string { return "<" + i.Value + ">" }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node label without the "_:" prefix.
	ID string
}

// NewBlankNode builds a blank node from a label with or without the "_:" prefix.
func NewBlankNode(label string) BlankNode {
	return BlankNode{ID: strings.TrimPrefix(label, "_:")}
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI. Empty means xsd:string.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// DatatypeIRI returns the datatype, defaulting to xsd:string.
func (l Literal) DatatypeIRI() string {
	if l.Datatype.Value == "" {
		return XSDString
	}
	return l.Datatype.Value
}

// String returns the literal in N-Quads form.
func (l Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(EscapeLiteral(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.DatatypeIRI() != XSDString:
		b.WriteString("^^<")
		b.WriteString(l.Datatype.Value)
		b.WriteByte('>')
	}
	return b.String()
}

// Quad is an RDF statement with an optional graph name.
type Quad struct {
	// S is the subject (IRI or blank node).
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
	// G is the graph name, or nil for the default graph.
	G Term
}

// IsZero reports whether the quad has no subject/predicate/object.
func (q Quad) IsZero() bool {
	return q.S == nil && q.P.Value == "" && q.O == nil && q.G == nil
}

// InDefaultGraph reports whether the quad is in the default graph (no named graph).
func (q Quad) InDefaultGraph() bool {
	return q.G == nil
}

// String returns the quad as a single N-Quads line including the trailing " .\n".
func (q Quad) String() string {
	return FormatQuad(q)
}

// EqualTerms reports whether two terms are identical, treating nil as the default graph.
func EqualTerms(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if la, ok := a.(Literal); ok {
		lb := b.(Literal)
		return la.Lexical == lb.Lexical && la.DatatypeIRI() == lb.DatatypeIRI() && la.Lang == lb.Lang
	}
	return a.String() == b.String()
}

// Equal reports whether two quads are identical.
func (q Quad) Equal(o Quad) bool {
	return EqualTerms(q.S, o.S) && q.P.Value == o.P.Value && EqualTerms(q.O, o.O) && EqualTerms(q.G, o.G)
}
