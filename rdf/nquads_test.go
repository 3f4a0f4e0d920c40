package rdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNQuadsDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"missing object": "<http://example.org/s> <http://example.org/p> .\n",
		"missing dot":    "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n",
		"literal graph":  "<http://example.org/s> <http://example.org/p> <http://example.org/o> \"g\" .\n",
		"literal subj":   "\"s\" <http://example.org/p> <http://example.org/o> .\n",
		"trailing junk":  "<http://example.org/s> <http://example.org/p> <http://example.org/o> . x\n",
		"bad escape":     "<http://example.org/s> <http://example.org/p> \"\\q\" .\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			dec := NewNQuadsDecoder(strings.NewReader(input), DefaultDecodeOptions())
			_, err := dec.Next()
			if err == nil {
				t.Fatal("expected error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T", err)
			}
			if parseErr.Line != 1 {
				t.Fatalf("expected line 1, got %d", parseErr.Line)
			}
			if Code(err) != ErrCodeParseError {
				t.Fatalf("unexpected code %s", Code(err))
			}
		})
	}
}

func TestNQuadsDecodeTerms(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"_:b1 <http://example.org/p> \"v\"@en .",
		"<http://example.org/s> <http://example.org/p> \"1\"^^<http://www.w3.org/2001/XMLSchema#integer> <http://example.org/g> .",
		"<http://example.org/s> <http://example.org/p> \"caf\\u00E9\\n\" _:g1.",
		"",
	}, "\n")
	quads, err := ParseNQuadsString(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}
	if b, ok := quads[0].S.(BlankNode); !ok || b.ID != "b1" {
		t.Fatalf("expected blank node subject, got %#v", quads[0].S)
	}
	if lit, ok := quads[0].O.(Literal); !ok || lit.Lang != "en" {
		t.Fatalf("expected lang literal, got %#v", quads[0].O)
	}
	if !quads[0].InDefaultGraph() {
		t.Fatal("expected default graph")
	}
	if lit, ok := quads[1].O.(Literal); !ok || lit.Datatype.Value != XSDInteger {
		t.Fatalf("expected integer literal, got %#v", quads[1].O)
	}
	if g, ok := quads[1].G.(IRI); !ok || g.Value != "http://example.org/g" {
		t.Fatalf("expected named graph, got %#v", quads[1].G)
	}
	if lit := quads[2].O.(Literal); lit.Lexical != "café\n" {
		t.Fatalf("unexpected unescaped literal %q", lit.Lexical)
	}
	if g, ok := quads[2].G.(BlankNode); !ok || g.ID != "g1" {
		t.Fatalf("expected blank node graph, got %#v", quads[2].G)
	}
}

func TestNQuadsDecodeLineLimit(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"" + strings.Repeat("x", 128) + "\" .\n"
	dec := NewNQuadsDecoder(strings.NewReader(input), DecodeOptions{MaxLineBytes: 32})
	_, err := dec.Next()
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
	if Code(err) != ErrCodeLineTooLong {
		t.Fatalf("unexpected code %s", Code(err))
	}
	if dec.Err() == nil {
		t.Fatal("expected sticky error")
	}
}

func TestNQuadsDecodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseNQuadsString(ctx, "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if Code(err) != ErrCodeContextCanceled {
		t.Fatalf("unexpected code %s", Code(err))
	}
}

func TestNQuadsEncoderRoundTrip(t *testing.T) {
	quads := []Quad{
		{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: Literal{Lexical: "tab\there \\ \"q\"\r"}},
		{S: BlankNode{ID: "c14n0"}, P: IRI{Value: RDFType}, O: IRI{Value: "http://example.org/T"}, G: IRI{Value: "http://example.org/g"}},
		{S: BlankNode{ID: "c14n0"}, P: IRI{Value: "http://example.org/n"}, O: Literal{Lexical: "5.3E0", Datatype: IRI{Value: XSDDouble}}},
	}
	var buf bytes.Buffer
	enc := NewNQuadsEncoder(&buf)
	for _, q := range quads {
		if err := enc.Write(q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != FormatQuads(quads) {
		t.Fatalf("encoder output differs from FormatQuads:\n%s", buf.String())
	}

	dec := NewNQuadsDecoder(&buf, DefaultDecodeOptions())
	for i, want := range quads {
		got, err := dec.Next()
		if err != nil {
			t.Fatalf("quad %d: unexpected error: %v", i, err)
		}
		if !got.Equal(want) {
			t.Fatalf("quad %d: got %s want %s", i, got, want)
		}
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNQuadsEncoderRejectsIncomplete(t *testing.T) {
	enc := NewNQuadsEncoder(io.Discard)
	err := enc.Write(Quad{S: IRI{Value: "http://example.org/s"}})
	if !errors.Is(err, ErrInvalidStatement) {
		t.Fatalf("expected ErrInvalidStatement, got %v", err)
	}
}

func TestEscapeLiteral(t *testing.T) {
	got := EscapeLiteral("a\\b\tc\nd\re\"f")
	want := `a\\b\tc\nd\re\"f`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if EscapeLiteral("plain") != "plain" {
		t.Fatal("expected plain string unchanged")
	}
}

func TestUnescapeString(t *testing.T) {
	cases := map[string]string{
		`plain`:          "plain",
		`\u0041`:         "A",
		`\U0001F600`:     "\U0001F600",
		`\uD83D\uDE00`:   "\U0001F600",
		`a\"b\\c\n`:      "a\"b\\c\n",
	}
	for in, want := range cases {
		got, err := UnescapeString(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
	for _, bad := range []string{`\`, `\u12`, `\uDC00`, `\x`} {
		if _, err := UnescapeString(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestParseErrorExcerpt(t *testing.T) {
	stmt := strings.Repeat("a", 100) + "!" + strings.Repeat("b", 100)
	err := wrapParseError("nquads", stmt, 3, 101, errors.New("unexpected token"))
	msg := err.Error()
	if !strings.HasPrefix(msg, "nquads:3:101: unexpected token") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "...") || !strings.Contains(msg, "!") {
		t.Fatalf("expected truncated excerpt around column, got %q", msg)
	}
}
