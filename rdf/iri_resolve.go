package rdf

import (
	"net/url"
	"strings"
)

// ResolveIRI resolves iri against base according to RFC 3986.
// An empty base returns iri unchanged. Query-only references, fragment bases
// and the empty reference are appended to base directly.
func ResolveIRI(base, iri string) string {
	if base == "" {
		return iri
	}
	if iri == "" || strings.HasPrefix(iri, "?") || strings.HasSuffix(base, "#") {
		return base + iri
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return fallbackResolve(base, iri)
	}
	relURL, err := url.Parse(iri)
	if err != nil {
		return fallbackResolve(base, iri)
	}
	if relURL.Scheme != "" {
		return iri
	}
	return baseURL.ResolveReference(relURL).String()
}

func fallbackResolve(base, iri string) string {
	if strings.HasSuffix(base, "/") {
		return base + iri
	}
	if lastSlash := strings.LastIndex(base, "/"); lastSlash >= 0 {
		return base[:lastSlash+1] + iri
	}
	return base + "/" + iri
}
