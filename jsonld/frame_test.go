package jsonld

import (
	"context"
	"errors"
	"testing"
)

const libraryDocument = `{
	"@context": {
		"ex": "http://example.org/",
		"contains": {"@id": "ex:contains", "@type": "@id"}
	},
	"@graph": [
		{"@id": "ex:lib", "@type": "ex:Library", "contains": "ex:book"},
		{"@id": "ex:book", "@type": "ex:Book", "ex:title": "Title", "contains": "ex:chapter"},
		{"@id": "ex:chapter", "@type": "ex:Chapter", "ex:title": "Ch1"}
	]
}`

const libraryContext = `{
	"ex": "http://example.org/",
	"contains": {"@id": "ex:contains", "@type": "@id"}
}`

func frameDocument(t *testing.T, input, frame string, opts ...Option) Value {
	t.Helper()
	got, err := Frame(context.Background(), MustParse(input), MustParse(frame), opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got
}

func TestFrameByType(t *testing.T) {
	got := frameDocument(t,
		`[{"@id": "ex:1", "@type": "ex:Person"}, {"@id": "ex:2", "@type": "ex:Place"}]`,
		`[{"@type": "ex:Person"}]`)
	assertValue(t, got, MustParse(`{"@graph": [{"@id": "ex:1", "@type": "ex:Person"}]}`))
}

func TestFrameNestedEmbedding(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@type": "ex:Library",
		"contains": {
			"@type": "ex:Book",
			"contains": {"@type": "ex:Chapter"}
		}
	}`)
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [{
			"@id": "ex:lib",
			"@type": "ex:Library",
			"contains": {
				"@id": "ex:book",
				"@type": "ex:Book",
				"ex:title": "Title",
				"contains": {
					"@id": "ex:chapter",
					"@type": "ex:Chapter",
					"ex:title": "Ch1"
				}
			}
		}]
	}`))
}

func TestFrameExplicit(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@type": "ex:Book",
		"@explicit": true,
		"ex:title": {}
	}`)
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [{"@id": "ex:book", "@type": "ex:Book", "ex:title": "Title"}]
	}`))
}

func TestFrameEmbedFalse(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@type": "ex:Library",
		"@embed": false
	}`)
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [{"@id": "ex:lib"}]
	}`))
}

func TestFrameDefaults(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@type": "ex:Book",
		"@explicit": true,
		"ex:title": {},
		"ex:missing": {"@default": "none"},
		"ex:gone": {"@omitDefault": true},
		"ex:nothing": {}
	}`)
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [{
			"@id": "ex:book",
			"@type": "ex:Book",
			"ex:title": "Title",
			"ex:missing": "none",
			"ex:nothing": null
		}]
	}`))

	// the same frame with omitDefault set globally drops every default
	// that is not given explicitly
	got = frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@type": "ex:Book",
		"@explicit": true,
		"ex:title": {},
		"ex:nothing": {}
	}`, OptOmitDefault(true))
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [{"@id": "ex:book", "@type": "ex:Book", "ex:title": "Title"}]
	}`))
}

func TestFrameDuckTyping(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{
		"@context": `+libraryContext+`,
		"@explicit": true,
		"ex:title": {}
	}`)
	assertValue(t, got, MustParse(`{
		"@context": `+libraryContext+`,
		"@graph": [
			{"@id": "ex:book", "@type": "ex:Book", "ex:title": "Title"},
			{"@id": "ex:chapter", "@type": "ex:Chapter", "ex:title": "Ch1"}
		]
	}`))
}

func TestFrameEmbedsOncePerMatch(t *testing.T) {
	input := `{
		"@context": {"ex": "http://example.org/"},
		"@graph": [
			{"@id": "ex:a", "@type": "ex:P", "ex:knows": {"@id": "ex:c"}, "ex:likes": {"@id": "ex:c"}},
			{"@id": "ex:b", "@type": "ex:P", "ex:knows": {"@id": "ex:c"}},
			{"@id": "ex:c", "ex:name": "C"}
		]
	}`
	got := frameDocument(t, input, `{"@context": {"ex": "http://example.org/"}, "@type": "ex:P"}`)
	assertValue(t, got, MustParse(`{
		"@context": {"ex": "http://example.org/"},
		"@graph": [
			{
				"@id": "ex:a",
				"@type": "ex:P",
				"ex:knows": {"@id": "ex:c", "ex:name": "C"},
				"ex:likes": {"@id": "ex:c"}
			},
			{
				"@id": "ex:b",
				"@type": "ex:P",
				"ex:knows": {"@id": "ex:c", "ex:name": "C"}
			}
		]
	}`))
}

func TestFrameIDIsNotMatched(t *testing.T) {
	got := frameDocument(t, libraryDocument, `{"@id": "http://example.org/book"}`)
	assertValue(t, got, MustParse(`{"@graph": []}`))
}

func TestFrameInvalid(t *testing.T) {
	_, err := Frame(context.Background(), MustParse(libraryDocument), MustParse(`[{"@type": "ex:A"}, {"@type": "ex:B"}]`))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}
