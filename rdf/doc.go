// Package rdf provides the RDF quad model used by the JSON-LD processor,
// together with a streaming N-Quads codec.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// Terms are IRI, BlankNode and Literal. A Quad with a nil graph belongs to
// the default graph.
//
// Example (decoding quads):
//
//	dec := rdf.NewNQuadsDecoder(strings.NewReader(input), rdf.DefaultDecodeOptions())
//	for {
//	    quad, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    // process quad.S, quad.P, quad.O, quad.G
//	}
//
// Decoder options enforce a per-line limit for untrusted input and carry a
// context for cancellation.
//
// ToLDDataset and FromLDDataset bridge to github.com/piprate/json-gold, and
// ReferenceCanonicalize exposes its URDNA2015 implementation for
// cross-checking canonical output.
package rdf
