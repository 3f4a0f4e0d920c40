package rdf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const formatNQuads = "nquads"

// NQuadsDecoder streams quads from an N-Quads document, one statement per line.
type NQuadsDecoder struct {
	reader *bufio.Reader
	opts   DecodeOptions
	line   int
	err    error
}

// NewNQuadsDecoder returns a decoder reading from r.
func NewNQuadsDecoder(r io.Reader, opts DecodeOptions) *NQuadsDecoder {
	return &NQuadsDecoder{reader: bufio.NewReader(r), opts: normalizeDecodeOptions(opts)}
}

// Next returns the next quad, or io.EOF once the input is exhausted.
func (d *NQuadsDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for {
		if err := checkDecodeContext(d.opts.Context); err != nil {
			d.err = err
			return Quad{}, err
		}
		raw, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err != io.EOF {
				d.line++
				err = wrapParseError(formatNQuads, "", d.line, 0, err)
			}
			d.err = err
			return Quad{}, err
		}
		d.line++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quad, err := parseNQuadsLine(line)
		if err != nil {
			d.err = wrapParseError(formatNQuads, line, d.line, 0, err)
			return Quad{}, d.err
		}
		return quad, nil
	}
}

// Err returns the first non-EOF error encountered by Next.
func (d *NQuadsDecoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// ParseNQuads reads every quad from r.
func ParseNQuads(ctx context.Context, r io.Reader) ([]Quad, error) {
	opts := DefaultDecodeOptions()
	opts.Context = ctx
	dec := NewNQuadsDecoder(r, opts)
	var quads []Quad
	for {
		q, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return quads, nil
		}
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
}

// ParseNQuadsString is ParseNQuads over an in-memory document.
func ParseNQuadsString(ctx context.Context, s string) ([]Quad, error) {
	return ParseNQuads(ctx, strings.NewReader(s))
}

func parseNQuadsLine(line string) (Quad, error) {
	cursor := &nqCursor{input: line}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Quad{}, err
	}
	predicate, err := cursor.parseIRI()
	if err != nil {
		return Quad{}, err
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Quad{}, err
	}
	var graph Term
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '.' {
		if graph, err = cursor.parseTerm(false); err != nil {
			return Quad{}, err
		}
	}
	if !cursor.consume('.') {
		return Quad{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Quad{}, cursor.errorf("unexpected content after '.'")
	}
	return Quad{S: subject, P: predicate, O: object, G: graph}, nil
}

type nqCursor struct {
	input string
	pos   int
}

func (c *nqCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *nqCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *nqCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token")
	}
}

func (c *nqCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		if c.input[c.pos] == ' ' {
			return IRI{}, c.errorf("space in IRI")
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value, err := UnescapeString(c.input[start:c.pos])
	if err != nil {
		return IRI{}, c.errorf("%v", err)
	}
	c.pos++
	return IRI{Value: value}, nil
}

func (c *nqCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && (c.input[c.pos] == '.' || !isTermDelimiter(c.input[c.pos])) {
		c.pos++
	}
	// A trailing '.' belongs to the statement terminator.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *nqCursor) parseLiteral() (Literal, error) {
	c.pos++ // opening quote
	start := c.pos
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '\\' {
			c.pos += 2
			continue
		}
		if ch == '"' {
			closed = true
			break
		}
		c.pos++
	}
	if !closed || c.pos > len(c.input) {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical, err := UnescapeString(c.input[start:c.pos])
	if err != nil {
		return Literal{}, c.errorf("%v", err)
	}
	c.pos++
	switch {
	case strings.HasPrefix(c.input[c.pos:], "@"):
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
			c.pos++
		}
		if start == c.pos {
			return Literal{}, c.errorf("language tag missing")
		}
		return Literal{Lexical: lexical, Lang: c.input[start:c.pos]}, nil
	case strings.HasPrefix(c.input[c.pos:], "^^"):
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		if dt.Value == XSDString {
			dt = IRI{}
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *nqCursor) errorf(format string, args ...interface{}) error {
	return &ParseError{Format: formatNQuads, Column: c.pos + 1, Err: fmt.Errorf(format, args...)}
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '.', '<', '"':
		return true
	default:
		return false
	}
}

// NQuadsEncoder writes quads as N-Quads lines.
type NQuadsEncoder struct {
	writer *bufio.Writer
	err    error
}

// NewNQuadsEncoder returns an encoder writing to w.
func NewNQuadsEncoder(w io.Writer) *NQuadsEncoder {
	return &NQuadsEncoder{writer: bufio.NewWriter(w)}
}

// Write emits a single quad.
func (e *NQuadsEncoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if q.S == nil || q.P.Value == "" || q.O == nil {
		return ErrInvalidStatement
	}
	if _, err := e.writer.WriteString(FormatQuad(q)); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Flush writes buffered output.
func (e *NQuadsEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

// Close flushes the encoder.
func (e *NQuadsEncoder) Close() error {
	return e.Flush()
}

// FormatQuad renders a quad as one N-Quads line terminated by " .\n".
func FormatQuad(q Quad) string {
	var b strings.Builder
	b.WriteString(renderTerm(q.S))
	b.WriteByte(' ')
	b.WriteString(q.P.String())
	b.WriteByte(' ')
	b.WriteString(renderTerm(q.O))
	if q.G != nil {
		b.WriteByte(' ')
		b.WriteString(renderTerm(q.G))
	}
	b.WriteString(" .\n")
	return b.String()
}

// FormatQuads renders quads in the given order.
func FormatQuads(quads []Quad) string {
	var b strings.Builder
	for _, q := range quads {
		b.WriteString(FormatQuad(q))
	}
	return b.String()
}

func renderTerm(term Term) string {
	if term == nil {
		return ""
	}
	return term.String()
}
