package jsonld

import (
	"context"
	"errors"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeSyntax indicates a malformed keyword value or malformed JSON.
	ErrCodeSyntax ErrorCode = "SYNTAX_ERROR"
	// ErrCodeCyclicContext indicates term definitions that depend on each other.
	ErrCodeCyclicContext ErrorCode = "CYCLIC_CONTEXT"
	// ErrCodeInvalidContext indicates a term that cannot be mapped to an absolute IRI.
	ErrCodeInvalidContext ErrorCode = "INVALID_CONTEXT"
	// ErrCodeKeywordRedefinition indicates a context that assigns a keyword.
	ErrCodeKeywordRedefinition ErrorCode = "KEYWORD_REDEFINITION"
	// ErrCodeListOfLists indicates a list directly containing another list.
	ErrCodeListOfLists ErrorCode = "LIST_OF_LISTS"
	// ErrCodeAmbiguousListCompaction indicates two lists compacting to one key.
	ErrCodeAmbiguousListCompaction ErrorCode = "AMBIGUOUS_LIST_COMPACTION"
	// ErrCodeInvalidRDFList indicates a broken rdf:first/rdf:rest chain.
	ErrCodeInvalidRDFList ErrorCode = "INVALID_RDF_LIST"
	// ErrCodeCanonicalizationTimeout indicates the permutation limit was reached.
	ErrCodeCanonicalizationTimeout ErrorCode = "CANONICALIZATION_TIMEOUT"
	// ErrCodeHashUnavailable indicates an unsupported hash algorithm.
	ErrCodeHashUnavailable ErrorCode = "HASH_UNAVAILABLE"
	// ErrCodeDepthExceeded indicates input nested deeper than MaxDepth.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
	// ErrCodeUnsupportedFormat indicates an unknown output format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

var (
	ErrSyntax                  = errors.New("jsonld: syntax error")
	ErrCyclicContext           = errors.New("jsonld: cyclic context")
	ErrInvalidContext          = errors.New("jsonld: invalid context")
	ErrKeywordRedefinition     = errors.New("jsonld: keyword redefinition")
	ErrListOfLists             = errors.New("jsonld: list of lists")
	ErrAmbiguousListCompaction = errors.New("jsonld: ambiguous list compaction")
	ErrInvalidRDFList          = errors.New("jsonld: invalid RDF list")
	ErrCanonicalizationTimeout = errors.New("jsonld: canonicalization permutation limit reached")
	ErrHashUnavailable         = errors.New("jsonld: hash algorithm unavailable")
	ErrDepthExceeded           = errors.New("jsonld: maximum depth exceeded")
	ErrUnsupportedFormat       = errors.New("jsonld: unsupported format")
)

var sentinels = map[ErrorCode]error{
	ErrCodeSyntax:                  ErrSyntax,
	ErrCodeCyclicContext:           ErrCyclicContext,
	ErrCodeInvalidContext:          ErrInvalidContext,
	ErrCodeKeywordRedefinition:     ErrKeywordRedefinition,
	ErrCodeListOfLists:             ErrListOfLists,
	ErrCodeAmbiguousListCompaction: ErrAmbiguousListCompaction,
	ErrCodeInvalidRDFList:          ErrInvalidRDFList,
	ErrCodeCanonicalizationTimeout: ErrCanonicalizationTimeout,
	ErrCodeHashUnavailable:         ErrHashUnavailable,
	ErrCodeDepthExceeded:           ErrDepthExceeded,
	ErrCodeUnsupportedFormat:       ErrUnsupportedFormat,
}

// Error is a processing failure. Term and Value identify the offending
// context term or sub-tree when known.
type Error struct {
	Code    ErrorCode
	Message string
	Term    string
	Value   Value
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("jsonld: ")
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Term != "" {
		b.WriteString(" (term ")
		b.WriteString(e.Term)
		b.WriteString(")")
	}
	if e.Value != nil {
		if data, err := Marshal(e.Value); err == nil {
			const limit = 80
			if len(data) > limit {
				data = append(data[:limit], "..."...)
			}
			b.WriteString(": ")
			b.Write(data)
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// Code returns the error code for err, or "" if err is not a processing error.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeContextCanceled
	}
	for code, s := range sentinels {
		if errors.Is(err, s) {
			return code
		}
	}
	return ""
}

func newError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func syntaxError(msg string, v Value) *Error {
	return &Error{Code: ErrCodeSyntax, Message: msg, Value: v}
}

func contextError(code ErrorCode, msg, term string, v Value) *Error {
	return &Error{Code: code, Message: msg, Term: term, Value: v}
}
