package jsonld

import "log/slog"

const (
	// DefaultMaxDepth bounds recursion over nested input.
	DefaultMaxDepth = 512
	// DefaultMaxPermutations bounds the permutations tried by one
	// canonicalization run, recursion included.
	DefaultMaxPermutations = 4096

	// FormatNQuads selects N-Quads text output.
	FormatNQuads = "application/n-quads"

	HashSHA256 = "SHA-256"
	HashSHA1   = "SHA-1"
)

// Option configures processing behavior.
type Option func(*Options)

// Options configures the processing algorithms.
type Options struct {
	// Base is the document IRI used to resolve relative IRIs.
	Base string

	// Compaction
	Strict        bool // fail on ambiguous list compaction
	CompactArrays bool // collapse single-element arrays
	Graph         bool // always emit a top-level @graph

	// Framing defaults
	Embed       bool
	Explicit    bool
	OmitDefault bool

	// RDF conversion
	UseRdfType     bool
	UseNativeTypes bool

	// Format selects the serialization of normalized output.
	Format string

	// AddBlankNodeIDs labels every node object during expansion.
	AddBlankNodeIDs bool

	// Limits for untrusted input. Zero selects the default, negative disables.
	MaxDepth        int
	MaxPermutations int

	// HashAlgorithm is SHA-256 (default) or SHA-1.
	HashAlgorithm string

	Logger *slog.Logger
}

// DefaultOptions returns the processing defaults.
func DefaultOptions() Options {
	return Options{
		Strict:          true,
		CompactArrays:   true,
		Embed:           true,
		UseNativeTypes:  true,
		MaxDepth:        DefaultMaxDepth,
		MaxPermutations: DefaultMaxPermutations,
		HashAlgorithm:   HashSHA256,
	}
}

func buildOptions(opts []Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return normalizeOptions(options)
}

func normalizeOptions(opts Options) Options {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxPermutations == 0 {
		opts.MaxPermutations = DefaultMaxPermutations
	}
	if opts.HashAlgorithm == "" {
		opts.HashAlgorithm = HashSHA256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// OptBase sets the document base IRI.
func OptBase(base string) Option {
	return func(opts *Options) {
		opts.Base = base
	}
}

// OptStrict controls whether ambiguous list compaction is an error.
func OptStrict(strict bool) Option {
	return func(opts *Options) {
		opts.Strict = strict
	}
}

// OptCompactArrays controls whether single-element arrays are collapsed.
func OptCompactArrays(compact bool) Option {
	return func(opts *Options) {
		opts.CompactArrays = compact
	}
}

// OptGraph forces a top-level @graph in compacted output.
func OptGraph(graph bool) Option {
	return func(opts *Options) {
		opts.Graph = graph
	}
}

// OptEmbed sets the default @embed flag for framing.
func OptEmbed(embed bool) Option {
	return func(opts *Options) {
		opts.Embed = embed
	}
}

// OptExplicit sets the default @explicit flag for framing.
func OptExplicit(explicit bool) Option {
	return func(opts *Options) {
		opts.Explicit = explicit
	}
}

// OptOmitDefault sets the default @omitDefault flag for framing.
func OptOmitDefault(omit bool) Option {
	return func(opts *Options) {
		opts.OmitDefault = omit
	}
}

// OptUseRdfType keeps rdf:type as a regular property when converting from RDF.
func OptUseRdfType(use bool) Option {
	return func(opts *Options) {
		opts.UseRdfType = use
	}
}

// OptUseNativeTypes converts xsd:boolean, xsd:integer and xsd:double
// literals to native JSON values when converting from RDF.
func OptUseNativeTypes(use bool) Option {
	return func(opts *Options) {
		opts.UseNativeTypes = use
	}
}

// OptFormat selects the output serialization, e.g. FormatNQuads.
func OptFormat(format string) Option {
	return func(opts *Options) {
		opts.Format = format
	}
}

// OptAddBlankNodeIDs labels unlabeled node objects during expansion.
func OptAddBlankNodeIDs() Option {
	return func(opts *Options) {
		opts.AddBlankNodeIDs = true
	}
}

// OptMaxDepth sets the maximum nesting depth limit.
func OptMaxDepth(maxDepth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = maxDepth
	}
}

// OptMaxPermutations sets the total permutation ceiling for canonicalization.
func OptMaxPermutations(limit int) Option {
	return func(opts *Options) {
		opts.MaxPermutations = limit
	}
}

// OptHashAlgorithm selects the canonicalization hash.
func OptHashAlgorithm(name string) Option {
	return func(opts *Options) {
		opts.HashAlgorithm = name
	}
}

// OptLogger sets the structured logger used for debug events.
func OptLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// OptSafeLimits applies limits suitable for untrusted input.
func OptSafeLimits() Option {
	return func(opts *Options) {
		opts.MaxDepth = 64
		opts.MaxPermutations = 256
	}
}
