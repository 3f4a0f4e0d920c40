package jsonld

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/geoknoesis/jsonld-go/rdf"
	"github.com/google/go-cmp/cmp"
)

func parseQuads(t *testing.T, nquads string) []rdf.Quad {
	t.Helper()
	quads, err := rdf.ParseNQuadsString(context.Background(), nquads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return quads
}

func canonicalString(t *testing.T, quads []rdf.Quad, opts ...Option) string {
	t.Helper()
	out, err := CanonicalizeQuads(context.Background(), quads, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rdf.FormatQuads(out)
}

// hubGraph links two hub nodes to n leaves each; every leaf looks the same.
func hubGraph(n int) string {
	var b strings.Builder
	for hub := 0; hub < 2; hub++ {
		for leaf := 0; leaf < n; leaf++ {
			fmt.Fprintf(&b, "_:h%d <http://example.org/p> _:l%d_%d .\n", hub, hub, leaf)
		}
	}
	return b.String()
}

func TestNormalizeSelfReference(t *testing.T) {
	ctx := context.Background()
	want := "_:c14n0 <http://schema.org/knows> _:c14n0 .\n"
	for _, label := range []string{"_:b0", "_:x"} {
		in := MustParse(`{"@id": "` + label + `", "http://schema.org/knows": {"@id": "` + label + `"}}`)
		got, err := NormalizeString(ctx, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("label %s: got %q want %q", label, got, want)
		}
	}
}

func TestCanonicalizeMatchesReference(t *testing.T) {
	cases := map[string]string{
		"chain": `_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:c .
_:c <http://example.org/q> "x" .
`,
		"two cycle": `_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:a .
`,
		"diamond": `_:a <http://example.org/p> _:b .
_:a <http://example.org/p> _:c .
_:b <http://example.org/p> _:d .
_:c <http://example.org/p> _:d .
`,
		"mixed": `<http://example.org/s> <http://example.org/p> _:x .
_:x <http://example.org/p> "1" .
_:y <http://example.org/p> "1" .
`,
		"six cycle": `_:n1 <http://example.org/next> _:n2 .
_:n2 <http://example.org/next> _:n3 .
_:n3 <http://example.org/next> _:n4 .
_:n4 <http://example.org/next> _:n5 .
_:n5 <http://example.org/next> _:n6 .
_:n6 <http://example.org/next> _:n1 .
`,
		"hubs": hubGraph(3),
		"shared across graphs": `_:a <http://example.org/p> _:b <http://example.org/g1> .
_:a <http://example.org/p> _:b <http://example.org/g2> .
_:c <http://example.org/p> _:d <http://example.org/g1> .
_:c <http://example.org/p> _:d <http://example.org/g2> .
`,
	}
	for name, nquads := range cases {
		t.Run(name, func(t *testing.T) {
			quads := parseQuads(t, nquads)
			want, err := rdf.ReferenceCanonicalize(context.Background(), quads)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want, canonicalString(t, quads)); diff != "" {
				t.Fatalf("canonical form mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCanonicalizeIgnoresLabelsAndOrder(t *testing.T) {
	first := parseQuads(t, `_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:c .
_:c <http://example.org/p> _:a .
_:a <http://example.org/name> "A" .
`)
	second := parseQuads(t, `_:zz <http://example.org/name> "A" .
_:yy <http://example.org/p> _:zz .
_:xx <http://example.org/p> _:yy .
_:zz <http://example.org/p> _:xx .
`)
	if diff := cmp.Diff(canonicalString(t, first), canonicalString(t, second)); diff != "" {
		t.Fatalf("isomorphic datasets differ (-first +second):\n%s", diff)
	}
}

func TestCanonicalizeDeduplicates(t *testing.T) {
	quads := parseQuads(t, `_:a <http://example.org/p> "v" .
_:a <http://example.org/p> "v" .
`)
	got := canonicalString(t, quads)
	if got != "_:c14n0 <http://example.org/p> \"v\" .\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNormalizeStable(t *testing.T) {
	ctx := context.Background()
	in := MustParse(`{
		"@id": "_:a",
		"http://example.org/p": [{"@id": "_:b", "http://example.org/p": {"@id": "_:a"}}],
		"http://example.org/name": "A"
	}`)
	once, err := Normalize(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := FromRDF(ctx, once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Normalize(ctx, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(rdf.FormatQuads(once), rdf.FormatQuads(twice)); diff != "" {
		t.Fatalf("normalization not stable (-once +twice):\n%s", diff)
	}
}

func TestCanonicalizePermutationLimit(t *testing.T) {
	quads := parseQuads(t, hubGraph(5))

	_, err := CanonicalizeQuads(context.Background(), quads, OptMaxPermutations(10))
	if !errors.Is(err, ErrCanonicalizationTimeout) {
		t.Fatalf("expected ErrCanonicalizationTimeout, got %v", err)
	}
	if Code(err) != ErrCodeCanonicalizationTimeout {
		t.Fatalf("unexpected code %s", Code(err))
	}

	if _, err := CanonicalizeQuads(context.Background(), quads); err != nil {
		t.Fatalf("expected default limit to pass, got %v", err)
	}
	if _, err := CanonicalizeQuads(context.Background(), quads, OptMaxPermutations(-1)); err != nil {
		t.Fatalf("expected disabled limit to pass, got %v", err)
	}
}

// circulantGraph links node i to nodes i+1 .. i+degree modulo n, so every
// node shares its first-degree hash and neighbor groups stay small.
func circulantGraph(n, degree int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		for d := 1; d <= degree; d++ {
			fmt.Fprintf(&b, "_:n%d <http://example.org/p> _:n%d .\n", i, (i+d)%n)
		}
	}
	return b.String()
}

func TestCanonicalizeTotalPermutationLimit(t *testing.T) {
	quads := parseQuads(t, circulantGraph(24, 3))

	// every group has 3! orderings, so only the total across recursion
	// can reach the ceiling
	_, err := CanonicalizeQuads(context.Background(), quads, OptMaxPermutations(200))
	if !errors.Is(err, ErrCanonicalizationTimeout) {
		t.Fatalf("expected ErrCanonicalizationTimeout, got %v", err)
	}
}

func TestRelatedGroupsKeepEveryOccurrence(t *testing.T) {
	c := &canonicalizer{
		ctx:         context.Background(),
		opts:        DefaultOptions(),
		newHash:     sha256.New,
		mentions:    map[string][]int{},
		firstDegree: map[string]string{},
		canonical:   NewUniqueNamer(canonicalPrefix),
	}
	c.index(parseQuads(t, `_:a <http://example.org/p> _:b <http://example.org/g1> .
_:a <http://example.org/p> _:b <http://example.org/g2> .
`))
	groups := c.relatedGroups("_:a", NewUniqueNamer(temporaryPrefix))
	if len(groups) != 1 {
		t.Fatalf("expected one related group, got %v", groups)
	}
	for _, nodes := range groups {
		if diff := cmp.Diff([]string{"_:b", "_:b"}, nodes); diff != "" {
			t.Fatalf("related nodes (-want +got):\n%s", diff)
		}
	}
}

func TestCanonicalizeHashAlgorithm(t *testing.T) {
	quads := parseQuads(t, `_:a <http://example.org/p> _:b .
_:b <http://example.org/p> _:a .
`)
	_, err := CanonicalizeQuads(context.Background(), quads, OptHashAlgorithm("MD5"))
	if !errors.Is(err, ErrHashUnavailable) {
		t.Fatalf("expected ErrHashUnavailable, got %v", err)
	}

	got := canonicalString(t, quads, OptHashAlgorithm(HashSHA1))
	if !strings.Contains(got, "_:c14n0") || !strings.Contains(got, "_:c14n1") {
		t.Fatalf("expected canonical labels, got %q", got)
	}
}

func TestNormalizeStringFormat(t *testing.T) {
	in := MustParse(`{"@id": "http://example.org/s", "http://example.org/p": "v"}`)
	_, err := NormalizeString(context.Background(), in, OptFormat("text/turtle"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	got, err := NormalizeString(context.Background(), in, OptFormat(FormatNQuads))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<http://example.org/s> <http://example.org/p> \"v\" .\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNormalizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Normalize(ctx, MustParse(`{"@id": "_:a", "http://example.org/p": "v"}`))
	if Code(err) != ErrCodeContextCanceled {
		t.Fatalf("expected %s, got %v", ErrCodeContextCanceled, err)
	}
}

func TestNextPermutation(t *testing.T) {
	perm := []string{"a", "b", "c"}
	var seen []string
	for ok := true; ok; ok = nextPermutation(perm) {
		seen = append(seen, strings.Join(perm, ""))
	}
	want := []string{"abc", "acb", "bac", "bca", "cab", "cba"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("permutations (-want +got):\n%s", diff)
	}
}
