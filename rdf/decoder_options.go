package rdf

import "context"

// DefaultMaxLineBytes caps a single N-Quads line.
const DefaultMaxLineBytes = 1 << 20

// DecodeOptions configures parser behavior and limits.
// Zero values use defaults. Use a negative MaxLineBytes to disable the limit.
type DecodeOptions struct {
	MaxLineBytes int
	// Context provides cancellation for decoding work.
	Context context.Context
}

// DefaultDecodeOptions returns safe defaults for parser limits.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MaxLineBytes: DefaultMaxLineBytes}
}

func normalizeDecodeOptions(opts DecodeOptions) DecodeOptions {
	if opts.MaxLineBytes == 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	return opts
}
