package jsonld

import (
	"context"
	"testing"
)

func TestSimplify(t *testing.T) {
	in := MustParse(`{
		"@context": {"ex": "http://example.org/vocab#"},
		"@id": "http://example.org/a",
		"@type": "ex:Person",
		"ex:name": "Ann",
		"ex:knows": {"@id": "http://example.org/b"},
		"ex:items": {"@list": ["x"]}
	}`)
	got, err := Simplify(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`{
		"@context": {
			"Person": {"@id": "http://example.org/vocab#Person", "@type": "@id"},
			"items": {"@id": "http://example.org/vocab#items", "@container": "@list"},
			"knows": {"@id": "http://example.org/vocab#knows", "@type": "@id"},
			"name": "http://example.org/vocab#name"
		},
		"@id": "http://example.org/a",
		"@type": "Person",
		"items": ["x"],
		"knows": "http://example.org/b",
		"name": "Ann"
	}`))
}

func TestSimplifyNameClash(t *testing.T) {
	in := MustParse(`{"http://a.org/name": "x", "http://b.org/name": "y"}`)
	got, err := Simplify(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, MustParse(`{
		"@context": {"name": "http://a.org/name", "name_": "http://b.org/name"},
		"name": "x",
		"name_": "y"
	}`))
}

func TestSimplifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	simplified, err := Simplify(ctx, MustParse(roundTripDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := Expand(ctx, MustParse(roundTripDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Expand(ctx, simplified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertValue(t, got, want)
}
