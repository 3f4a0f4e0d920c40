package jsonld

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestExpandScenario(t *testing.T) {
	in := MustParse(`{"@context":{"name":"http://schema.org/name"},"name":"Ann"}`)
	got, err := Expand(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`[{"http://schema.org/name":[{"@value":"Ann"}]}]`))
}

const richDocument = `{
	"@context": {
		"ex": "http://example.org/",
		"knows": {"@id": "ex:knows", "@type": "@id"},
		"items": {"@id": "ex:items", "@container": "@list"},
		"label": {"@id": "ex:label", "@container": "@language"},
		"age": {"@id": "ex:age", "@type": "http://www.w3.org/2001/XMLSchema#integer"}
	},
	"@id": "alice",
	"@type": "ex:Person",
	"knows": "bob",
	"items": ["a", 1],
	"label": {"en": "Hi", "fr": ["Salut"]},
	"age": "42",
	"unmapped": "dropped"
}`

const richExpanded = `[{
	"@id": "http://base.org/alice",
	"@type": ["http://example.org/Person"],
	"http://example.org/knows": [{"@id": "http://base.org/bob"}],
	"http://example.org/items": [{"@list": [{"@value": "a"}, {"@value": 1}]}],
	"http://example.org/label": [
		{"@value": "Hi", "@language": "en"},
		{"@value": "Salut", "@language": "fr"}
	],
	"http://example.org/age": [
		{"@value": "42", "@type": "http://www.w3.org/2001/XMLSchema#integer"}
	]
}]`

func TestExpandCoercionAndContainers(t *testing.T) {
	got, err := Expand(context.Background(), MustParse(richDocument), OptBase("http://base.org/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(richExpanded))
}

func TestExpandIdempotent(t *testing.T) {
	ctx := context.Background()
	once, err := Expand(ctx, MustParse(richDocument), OptBase("http://base.org/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Expand(ctx, once, OptBase("http://base.org/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, twice, once)
}

func TestExpandUnwrapsGraph(t *testing.T) {
	in := MustParse(`{
		"@context": {"ex": "http://example.org/"},
		"@graph": [
			{"@id": "ex:a", "ex:p": "1"},
			{"@id": "ex:b", "ex:p": "2"}
		]
	}`)
	got, err := Expand(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`[
		{"@id": "http://example.org/a", "http://example.org/p": [{"@value": "1"}]},
		{"@id": "http://example.org/b", "http://example.org/p": [{"@value": "2"}]}
	]`))
}

func TestExpandNestedContextIsLocal(t *testing.T) {
	in := MustParse(`{
		"@context": {"p": "http://example.org/outer"},
		"p": {"@context": {"p": "http://example.org/inner"}, "p": "x"},
		"http://example.org/other": {"p": "y"}
	}`)
	got, err := Expand(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`[{
		"http://example.org/outer": [{"http://example.org/inner": [{"@value": "x"}]}],
		"http://example.org/other": [{"http://example.org/outer": [{"@value": "y"}]}]
	}]`))
}

func TestExpandDropsNulls(t *testing.T) {
	in := MustParse(`{
		"http://example.org/a": null,
		"http://example.org/b": {"@value": null},
		"http://example.org/c": [null, "x"],
		"http://example.org/d": {"@language": "en"}
	}`)
	got, err := Expand(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`[{"http://example.org/c": [{"@value": "x"}]}]`))

	scalar, err := Expand(context.Background(), String("free-floating"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scalar) != 0 {
		t.Fatalf("expected free-floating scalar to be dropped, got %v", scalar)
	}
}

func TestExpandSetAndList(t *testing.T) {
	in := MustParse(`{
		"http://example.org/s": {"@set": ["a", "b"]},
		"http://example.org/l": {"@list": []}
	}`)
	got, err := Expand(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`[{
		"http://example.org/s": [{"@value": "a"}, {"@value": "b"}],
		"http://example.org/l": [{"@list": []}]
	}]`))
}

func TestExpandErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		code ErrorCode
	}{
		{"id not string", `{"@id": 5}`, ErrCodeSyntax},
		{"type number", `{"@type": 5}`, ErrCodeSyntax},
		{"graph string", `{"@graph": "x"}`, ErrCodeSyntax},
		{"value object", `{"http://example.org/p": {"@value": {"a": 1}}}`, ErrCodeSyntax},
		{"language number", `{"http://example.org/p": {"@value": "x", "@language": 5}}`, ErrCodeSyntax},
		{"value extra key", `{"http://example.org/p": {"@value": "x", "http://example.org/q": "y"}}`, ErrCodeSyntax},
		{"set extra key", `{"http://example.org/p": {"@set": ["x"], "@id": "http://example.org/a"}}`, ErrCodeSyntax},
		{"nested array in list", `{"http://example.org/p": {"@list": [["a"]]}}`, ErrCodeListOfLists},
		{"list in list", `{"http://example.org/p": {"@list": [{"@list": ["a"]}]}}`, ErrCodeListOfLists},
		{"bad context", `{"@context": {"@vocab": "nope"}, "a": "b"}`, ErrCodeInvalidContext},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Expand(context.Background(), MustParse(tc.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if Code(err) != tc.code {
				t.Fatalf("expected %s, got %s (%v)", tc.code, Code(err), err)
			}
			var procErr *Error
			if !errors.As(err, &procErr) || procErr.Value == nil {
				t.Fatalf("expected error to carry the offending value, got %#v", err)
			}
		})
	}
}

func deepDocument(levels int) Value {
	var v Value = String("leaf")
	for i := 0; i < levels; i++ {
		v = Object{"http://example.org/p": v}
	}
	return v
}

func TestExpandDepthLimit(t *testing.T) {
	ctx := context.Background()
	_, err := Expand(ctx, deepDocument(20), OptMaxDepth(5))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	if _, err := Expand(ctx, deepDocument(20), OptMaxDepth(-1)); err != nil {
		t.Fatalf("expected disabled limit to pass, got %v", err)
	}
	if _, err := Expand(ctx, deepDocument(20)); err != nil {
		t.Fatalf("expected default limit to pass, got %v", err)
	}
}

func TestExpandAddBlankNodeIDs(t *testing.T) {
	in := MustParse(`{"http://example.org/p": {"http://example.org/q": "v"}}`)
	got, err := Expand(context.Background(), in, OptAddBlankNodeIDs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer := got[0].(Object)
	inner := outer["http://example.org/p"].(Array)[0].(Object)
	outerID, _ := stringOf(outer[kwID])
	innerID, _ := stringOf(inner[kwID])
	if !strings.HasPrefix(outerID, "_:t") || !strings.HasPrefix(innerID, "_:t") || outerID == innerID {
		t.Fatalf("expected distinct generated ids, got %q and %q", outerID, innerID)
	}
}

func TestExpandLogsDroppedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Expand(context.Background(), MustParse(`{"unmapped": "x", "http://example.org/p": "y"}`), OptLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "dropping key without IRI mapping") || !strings.Contains(buf.String(), "key=unmapped") {
		t.Fatalf("expected debug log for dropped key, got %q", buf.String())
	}
}

func TestExpandCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Expand(ctx, MustParse(`{"http://example.org/p": "x"}`))
	if Code(err) != ErrCodeContextCanceled {
		t.Fatalf("expected %s, got %v", ErrCodeContextCanceled, err)
	}
}
