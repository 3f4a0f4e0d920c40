// Package jsonld implements a JSON-LD 1.0 processor: context processing,
// expansion, compaction, flattening, framing, conversion to and from RDF,
// and URDNA2015 normalization.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// Documents are Value trees (Null, Bool, Number, String, Array, Object).
// Parse and Decode read JSON, keeping the distinction between integer and
// floating point numbers; Marshal and Encode write it back with sorted keys.
//
// Example (compaction):
//
//	doc := jsonld.MustParse(`{"http://xmlns.com/foaf/0.1/name": "Alice"}`)
//	ctx := jsonld.MustParse(`{"@context": {"name": "http://xmlns.com/foaf/0.1/name"}}`)
//	out, err := jsonld.Compact(context.Background(), doc, ctx)
//	if err != nil {
//	    // handle error
//	}
//	data, _ := jsonld.Marshal(out)
//	// {"@context":{"name":"http://xmlns.com/foaf/0.1/name"},"name":"Alice"}
//
// Remote contexts are never fetched: a @context must be an object, an array
// of objects or null.
//
// Every failure is an *Error carrying an ErrorCode; use Code(err) or
// errors.Is with the ErrXxx sentinels. MaxDepth and MaxPermutations bound the
// work done on untrusted input.
package jsonld
