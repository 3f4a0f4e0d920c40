package rdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// ToLDDataset converts quads into a json-gold dataset.
func ToLDDataset(quads []Quad) (*ld.RDFDataset, error) {
	nquads, err := quadsToNQuads(quads)
	if err != nil {
		return nil, err
	}
	serializer := &ld.NQuadRDFSerializer{}
	return serializer.Parse(nquads)
}

// FromLDDataset converts a json-gold dataset into quads.
func FromLDDataset(ctx context.Context, dataset *ld.RDFDataset) ([]Quad, error) {
	if dataset == nil {
		return nil, nil
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return nil, err
	}
	nquads, ok := serialized.(string)
	if !ok {
		return nil, fmt.Errorf("rdf: unexpected N-Quads result %T", serialized)
	}
	return ParseNQuadsString(ctx, nquads)
}

// ReferenceCanonicalize canonicalizes quads with json-gold's URDNA2015
// implementation and returns sorted N-Quads.
func ReferenceCanonicalize(ctx context.Context, quads []Quad) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	dataset, err := ToLDDataset(quads)
	if err != nil {
		return "", err
	}
	api := ld.NewJsonLdApi()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.Algorithm = ld.AlgorithmURDNA2015
	normalized, err := api.Normalize(dataset, opts)
	if err != nil {
		return "", err
	}
	value, ok := normalized.(string)
	if !ok {
		return "", fmt.Errorf("rdf: unexpected normalization result %T", normalized)
	}
	return value, nil
}

// ReferenceToRDF converts a JSON-LD document held in plain Go values
// (maps, slices, strings, float64, bool, nil) using json-gold.
func ReferenceToRDF(ctx context.Context, doc interface{}, base string) ([]Quad, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(base)
	result, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, err
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("rdf: unexpected ToRDF result %T", result)
	}
	return FromLDDataset(ctx, dataset)
}

func quadsToNQuads(quads []Quad) (string, error) {
	var buf bytes.Buffer
	enc := NewNQuadsEncoder(&buf)
	for _, q := range quads {
		if err := enc.Write(q); err != nil {
			_ = enc.Close()
			return "", err
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
