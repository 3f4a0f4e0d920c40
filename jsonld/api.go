package jsonld

import (
	"context"
	"io"
	"log/slog"

	"github.com/geoknoesis/jsonld-go/rdf"
)

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Expand removes the context from input, producing an array of expanded
// node objects. A top-level object holding only @graph is unwrapped.
func Expand(ctx context.Context, input Value, opts ...Option) (Array, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return expandDocument(input, buildOptions(opts))
}

func expandDocument(input Value, opts Options) (Array, error) {
	expanded, err := newExpander(opts).expand(NewActiveContext(), "", input, 0)
	if err != nil {
		return nil, err
	}
	if obj, ok := expanded.(Object); ok && len(obj) == 1 && obj.Has(kwGraph) {
		expanded = obj[kwGraph]
	}
	if expanded == nil {
		return Array{}, nil
	}
	return asArray(expanded), nil
}

// Compact expands input and compacts the result with localContext, which is
// attached to the output unless it is empty; multiple top-level nodes are
// wrapped in @graph.
func Compact(ctx context.Context, input, localContext Value, opts ...Option) (Value, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	options := buildOptions(opts)
	expanded, err := expandDocument(input, options)
	if err != nil {
		return nil, err
	}
	return compactDocument(expanded, localContext, options)
}

// compactDocument compacts an expanded document and attaches local.
func compactDocument(expanded Array, local Value, opts Options) (Value, error) {
	active := NewActiveContext()
	if !IsNull(local) {
		var err error
		if active, err = processContext(active, local, opts.Base); err != nil {
			return nil, err
		}
	}

	c := &compacter{opts: opts}
	compacted, err := c.compact(active, "", expanded)
	if err != nil {
		return nil, err
	}
	if arr, ok := compacted.(Array); ok && !opts.Graph && len(arr) == 1 {
		compacted = arr[0]
	} else if obj, ok := compacted.(Object); ok && opts.Graph {
		compacted = Array{obj}
	}

	if obj, ok := local.(Object); ok && obj.Has(kwContext) {
		local = obj[kwContext]
	}
	var contexts Array
	for _, lc := range asArray(Clone(local)) {
		if IsNull(lc) {
			continue
		}
		if obj, ok := lc.(Object); ok && len(obj) == 0 {
			continue
		}
		contexts = append(contexts, lc)
	}
	hasContext := len(contexts) > 0
	var contextValue Value = contexts
	if len(contexts) == 1 {
		contextValue = contexts[0]
	}

	if !hasContext && !opts.Graph {
		return compacted, nil
	}
	switch v := compacted.(type) {
	case Array:
		out := Object{compactIRI(active, kwGraph, nil, true): v}
		if hasContext {
			out[kwContext] = contextValue
		}
		return out, nil
	case Object:
		if hasContext {
			v[kwContext] = contextValue
		}
		return v, nil
	}
	return compacted, nil
}

// Flatten expands input and collects every node object at the top level,
// replacing nested nodes by references. With a non-null context the result
// is compacted and wrapped in @graph.
func Flatten(ctx context.Context, input, localContext Value, opts ...Option) (Value, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	options := buildOptions(opts)
	expanded, err := expandDocument(input, options)
	if err != nil {
		return nil, err
	}

	graphs := newGraphMap(graphDefault)
	graphs.flatten(expanded, graphDefault, NewUniqueNamer("_:t"), "", nil)
	flattened := graphs.flattened()
	if IsNull(localContext) {
		return flattened, nil
	}

	options.Graph = true
	return compactDocument(flattened, localContext, options)
}

// Frame reshapes input into the tree described by frame. The frame's
// @context, if any, is used to compact the output.
func Frame(ctx context.Context, input, frameDoc Value, opts ...Option) (Value, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	options := buildOptions(opts)

	var frameContext Value = Object{}
	active := NewActiveContext()
	if obj, ok := frameDoc.(Object); ok && obj.Has(kwContext) {
		frameContext = obj[kwContext]
		var err error
		if active, err = processContext(active, frameContext, options.Base); err != nil {
			return nil, err
		}
	}

	expandedInput, err := expandDocument(input, options)
	if err != nil {
		return nil, err
	}
	expandedFrame, err := expandDocument(frameDoc, options)
	if err != nil {
		return nil, err
	}

	framed, err := frame(expandedInput, expandedFrame, options)
	if err != nil {
		return nil, err
	}

	options.Graph = true
	compacted, err := compactDocument(framed, frameContext, options)
	if err != nil {
		return nil, err
	}
	out, ok := compacted.(Object)
	if !ok {
		return compacted, nil
	}
	graphKey := compactIRI(active, kwGraph, nil, true)
	out[graphKey] = removePreserve(active, out[graphKey], options.CompactArrays)
	return out, nil
}

// ToRDF expands input and returns its statements. Blank nodes are relabeled
// _:t0, _:t1, ... in first-seen order.
func ToRDF(ctx context.Context, input Value, opts ...Option) ([]rdf.Quad, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	expanded, err := expandDocument(input, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return toRDF(expanded), nil
}

// FromRDF builds expanded JSON-LD from statements.
func FromRDF(ctx context.Context, quads []rdf.Quad, opts ...Option) (Array, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return fromRDF(quads, buildOptions(opts))
}

// FromNQuads parses an N-Quads document and converts it like FromRDF.
func FromNQuads(ctx context.Context, r io.Reader, opts ...Option) (Array, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	quads, err := rdf.ParseNQuads(ctx, r)
	if err != nil {
		return nil, err
	}
	return fromRDF(quads, buildOptions(opts))
}

// Normalize returns the canonical statements of input (URDNA2015), sorted by
// their N-Quads serialization.
func Normalize(ctx context.Context, input Value, opts ...Option) ([]rdf.Quad, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	options := buildOptions(opts)
	expanded, err := expandDocument(input, options)
	if err != nil {
		return nil, err
	}
	return canonicalizeLogged(ctx, toRDF(expanded), options)
}

// NormalizeString is Normalize serialized as N-Quads. Format must be empty or
// FormatNQuads.
func NormalizeString(ctx context.Context, input Value, opts ...Option) (string, error) {
	options := buildOptions(opts)
	if options.Format != "" && options.Format != FormatNQuads {
		return "", &Error{Code: ErrCodeUnsupportedFormat, Message: "unknown output format " + options.Format}
	}
	quads, err := Normalize(ctx, input, opts...)
	if err != nil {
		return "", err
	}
	return rdf.FormatQuads(quads), nil
}

// CanonicalizeQuads relabels the blank nodes of quads canonically and
// returns them deduplicated and sorted.
func CanonicalizeQuads(ctx context.Context, quads []rdf.Quad, opts ...Option) ([]rdf.Quad, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return canonicalizeLogged(ctx, quads, buildOptions(opts))
}

func canonicalizeLogged(ctx context.Context, quads []rdf.Quad, opts Options) ([]rdf.Quad, error) {
	out, err := canonicalize(ctx, quads, opts)
	if err != nil {
		opts.Logger.Debug("canonicalization failed", slog.Int("quads", len(quads)), slog.String("code", string(Code(err))))
		return nil, err
	}
	return out, nil
}

// Simplify compacts input with a generated context that maps the local
// names of its http(s) property and type IRIs to the full IRIs.
func Simplify(ctx context.Context, input Value, opts ...Option) (Value, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	options := buildOptions(opts)
	expanded, err := expandDocument(input, options)
	if err != nil {
		return nil, err
	}
	generated := Object{}
	simplifyContext(expanded, generated)
	return compactDocument(expanded, Object{kwContext: generated}, options)
}
