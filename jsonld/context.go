package jsonld

import (
	"sort"
	"strings"

	"github.com/geoknoesis/jsonld-go/rdf"
)

// maxIRIHops bounds chains of term-to-term references during IRI expansion.
const maxIRIHops = 64

// TermDefinition maps a term to an IRI with optional coercion rules.
type TermDefinition struct {
	ID        string // IRI or keyword
	Type      string // @type coercion, "" if none
	Container string // @list, @set, @language or ""
	// Language is the term's @language; HasLanguage with an empty Language
	// records an explicit null.
	Language    string
	HasLanguage bool
}

// ActiveContext is the term state used to interpret a JSON-LD tree. It is
// never mutated once returned; processing a local context yields a new one.
type ActiveContext struct {
	terms    map[string]TermDefinition
	vocab    string
	language string
	aliases  map[string][]string
}

// NewActiveContext returns an empty context.
func NewActiveContext() *ActiveContext {
	return &ActiveContext{
		terms:   map[string]TermDefinition{},
		aliases: map[string][]string{},
	}
}

func (c *ActiveContext) clone() *ActiveContext {
	out := &ActiveContext{
		terms:    make(map[string]TermDefinition, len(c.terms)),
		vocab:    c.vocab,
		language: c.language,
		aliases:  make(map[string][]string, len(c.aliases)),
	}
	for k, v := range c.terms {
		out.terms[k] = v
	}
	for k, v := range c.aliases {
		out.aliases[k] = append([]string(nil), v...)
	}
	return out
}

// Term returns the definition of name.
func (c *ActiveContext) Term(name string) (TermDefinition, bool) {
	def, ok := c.terms[name]
	return def, ok
}

// Terms returns the defined terms in sorted order.
func (c *ActiveContext) Terms() []string {
	out := make([]string, 0, len(c.terms))
	for k := range c.terms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Vocab returns the @vocab mapping, or "".
func (c *ActiveContext) Vocab() string { return c.vocab }

// Language returns the default @language, or "".
func (c *ActiveContext) Language() string { return c.language }

// Aliases returns the aliases of keyword, shortest first.
func (c *ActiveContext) Aliases(keyword string) []string {
	return append([]string(nil), c.aliases[keyword]...)
}

// alias returns the preferred alias of keyword, or keyword itself.
func (c *ActiveContext) alias(keyword string) string {
	if a := c.aliases[keyword]; len(a) > 0 {
		return a[0]
	}
	return keyword
}

func (c *ActiveContext) addAlias(keyword, term string) {
	for _, a := range c.aliases[keyword] {
		if a == term {
			return
		}
	}
	aliases := append(c.aliases[keyword], term)
	sortShortest(aliases)
	c.aliases[keyword] = aliases
}

func (c *ActiveContext) removeTerm(term string) {
	def, ok := c.terms[term]
	if !ok {
		return
	}
	if isKeyword(def.ID) {
		aliases := c.aliases[def.ID][:0]
		for _, a := range c.aliases[def.ID] {
			if a != term {
				aliases = append(aliases, a)
			}
		}
		c.aliases[def.ID] = aliases
	}
	delete(c.terms, term)
}

// typeOf returns the @type coercion of property, or "".
func (c *ActiveContext) typeOf(property string) string {
	if property == "" {
		return ""
	}
	return c.terms[property].Type
}

// containerOf returns the @container of property, or "".
func (c *ActiveContext) containerOf(property string) string {
	if property == "" {
		return ""
	}
	return c.terms[property].Container
}

// languageOf returns the language for values of property: the term's own
// @language (possibly an explicit null) or the default language.
func (c *ActiveContext) languageOf(property string) (string, bool) {
	if property == "" {
		return "", false
	}
	lang, ok := c.language, c.language != ""
	if def, found := c.terms[property]; found && def.HasLanguage {
		lang, ok = def.Language, def.Language != ""
	}
	return lang, ok
}

// ProcessContext merges a local context into active and returns the result.
// A nil active context starts from an empty one; a null local context resets.
func ProcessContext(active *ActiveContext, local Value, opts ...Option) (*ActiveContext, error) {
	options := buildOptions(opts)
	if active == nil {
		active = NewActiveContext()
	}
	if IsNull(local) {
		return NewActiveContext(), nil
	}
	return processContext(active, local, options.Base)
}

func processContext(active *ActiveContext, local Value, base string) (*ActiveContext, error) {
	result := active.clone()
	locals, err := localContexts(local, nil)
	if err != nil {
		return nil, err
	}
	for _, ctx := range locals {
		if ctx == nil {
			result = NewActiveContext()
			continue
		}
		defining := map[string]bool{}
		for _, key := range ctx.Keys() {
			if err := defineTerm(result, ctx, key, &base, defining); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// localContexts flattens a local context into the context objects to apply
// in order. A nil entry means reset.
func localContexts(local Value, out []Object) ([]Object, error) {
	switch v := local.(type) {
	case nil, Null:
		return append(out, nil), nil
	case Array:
		for _, e := range v {
			var err error
			if out, err = localContexts(e, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	case Object:
		if inner, ok := v[kwContext]; ok {
			return localContexts(inner, out)
		}
		return append(out, v), nil
	}
	return nil, contextError(ErrCodeInvalidContext, "@context must be an object", "", local)
}

// defineTerm resolves key of the local context ctx into active.
// defining tracks keys in progress (false) and done (true).
func defineTerm(active *ActiveContext, ctx Object, key string, base *string, defining map[string]bool) error {
	if done, ok := defining[key]; ok {
		if done {
			return nil
		}
		return contextError(ErrCodeCyclicContext, "cyclical context definition detected", key, ctx)
	}
	defining[key] = false

	prefix, suffix, hasPrefix := strings.Cut(key, ":")
	if hasPrefix && ctx.Has(prefix) {
		if err := defineTerm(active, ctx, prefix, base, defining); err != nil {
			return err
		}
	}

	value := ctx[key]

	if isKeyword(key) {
		switch key {
		case kwVocab:
			if IsNull(value) {
				active.vocab = ""
				break
			}
			vocab, ok := stringOf(value)
			if !ok || !isAbsoluteIRI(vocab) {
				return contextError(ErrCodeInvalidContext, "@vocab must be an absolute IRI or null", key, value)
			}
			active.vocab = vocab
		case kwLanguage:
			if IsNull(value) {
				active.language = ""
				break
			}
			lang, ok := stringOf(value)
			if !ok {
				return contextError(ErrCodeSyntax, "@language in a context must be a string or null", key, value)
			}
			active.language = lang
		default:
			return contextError(ErrCodeKeywordRedefinition, "keywords cannot be overridden", key, value)
		}
		defining[key] = true
		return nil
	}

	if IsNull(value) || isNullID(value) {
		active.removeTerm(key)
		defining[key] = true
		return nil
	}

	if s, ok := stringOf(value); ok {
		id := s
		if isKeyword(s) {
			if s == kwContext || s == kwPreserve {
				return contextError(ErrCodeKeywordRedefinition, "@context and @preserve cannot be aliased", key, value)
			}
		} else {
			var err error
			if id, err = expandContextIRI(active, ctx, s, base, defining, 0); err != nil {
				return err
			}
		}
		active.removeTerm(key)
		if isKeyword(id) {
			active.addAlias(id, key)
		}
		active.terms[key] = TermDefinition{ID: id}
		defining[key] = true
		return nil
	}

	obj, ok := asObject(value)
	if !ok {
		return contextError(ErrCodeInvalidContext, "context values must be strings or objects", key, value)
	}

	var def TermDefinition
	switch {
	case obj.Has(kwID):
		id, ok := stringOf(obj[kwID])
		if !ok {
			return contextError(ErrCodeSyntax, "@id in a term definition must be a string", key, obj)
		}
		if id != kwType && !isKeyword(id) {
			var err error
			if id, err = expandContextIRI(active, ctx, id, base, defining, 0); err != nil {
				return err
			}
		}
		def.ID = id
	case active.vocab != "":
		def.ID = active.vocab + key
	case !hasPrefix:
		return contextError(ErrCodeInvalidContext, "term definitions must define an @id", key, obj)
	default:
		if parent, ok := active.terms[prefix]; ok {
			def.ID = parent.ID + suffix
		} else {
			def.ID = key
		}
	}

	if t, ok := obj[kwType]; ok {
		typ, ok := stringOf(t)
		if !ok {
			return contextError(ErrCodeSyntax, "@type in a term definition must be a string", key, obj)
		}
		if typ != kwID {
			var err error
			if typ, err = expandContextIRI(active, ctx, typ, nil, defining, 0); err != nil {
				return err
			}
		}
		def.Type = typ
	}

	if c, ok := obj[kwContainer]; ok {
		container, _ := stringOf(c)
		switch container {
		case kwList, kwSet, kwLanguage:
			def.Container = container
		default:
			return contextError(ErrCodeInvalidContext, "@container must be @list, @set or @language", key, obj)
		}
	}

	if l, ok := obj[kwLanguage]; ok {
		def.HasLanguage = true
		if !IsNull(l) {
			lang, ok := stringOf(l)
			if !ok {
				return contextError(ErrCodeSyntax, "@language in a term definition must be a string or null", key, obj)
			}
			def.Language = lang
		}
	}

	if hasPrefix {
		if parent, ok := active.terms[prefix]; ok {
			merged := parent
			merged.ID = def.ID
			if obj.Has(kwType) {
				merged.Type = def.Type
			}
			if obj.Has(kwContainer) {
				merged.Container = def.Container
			}
			if def.HasLanguage {
				merged.Language, merged.HasLanguage = def.Language, true
			}
			def = merged
		}
	}

	active.removeTerm(key)
	active.terms[key] = def
	defining[key] = true
	return nil
}

func isNullID(v Value) bool {
	obj, ok := v.(Object)
	if !ok {
		return false
	}
	id, ok := obj[kwID]
	return ok && IsNull(id)
}

// expandContextIRI expands value to an absolute IRI while a local context is
// being processed, defining dependencies first. A nil base marks a @type
// value, which only uses the local @vocab.
func expandContextIRI(active *ActiveContext, ctx Object, value string, base *string, defining map[string]bool, hops int) (string, error) {
	if hops > maxIRIHops {
		return "", contextError(ErrCodeCyclicContext, "term references do not terminate", value, ctx)
	}
	if ctx.Has(value) && !defining[value] {
		if err := defineTerm(active, ctx, value, base, defining); err != nil {
			return "", err
		}
	}

	if def, ok := active.terms[value]; ok {
		if def.ID == value {
			return value, nil
		}
		return expandContextIRI(active, ctx, def.ID, base, defining, hops+1)
	}

	if prefix, suffix, ok := strings.Cut(value, ":"); ok {
		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return value, nil
		}
		if ctx.Has(prefix) && !defining[prefix] {
			if err := defineTerm(active, ctx, prefix, base, defining); err != nil {
				return "", err
			}
		}
		if def, ok := active.terms[prefix]; ok {
			expanded, err := expandContextIRI(active, ctx, def.ID, base, defining, hops+1)
			if err != nil {
				return "", err
			}
			return expanded + suffix, nil
		}
		return value, nil
	}

	if isKeyword(value) {
		return value, nil
	}

	switch {
	case base == nil:
		if vocab, ok := stringOf(ctx[kwVocab]); ok {
			value = vocab + value
		}
	case active.vocab != "":
		value = active.vocab + value
	default:
		value = rdf.ResolveIRI(*base, value)
	}

	if !isAbsoluteIRI(value) {
		return "", contextError(ErrCodeInvalidContext, "context value does not expand to an absolute IRI", value, ctx)
	}
	return value, nil
}

// expandIRI expands a key or value using the active context. Keys and @type
// values are appended to @vocab; other values are resolved against base.
func expandIRI(ctx *ActiveContext, term, base string, isKey, isValueOfType bool) string {
	return expandIRIHops(ctx, term, base, isKey, isValueOfType, 0)
}

func expandIRIHops(ctx *ActiveContext, term, base string, isKey, isValueOfType bool, hops int) string {
	if term == "" || hops > maxIRIHops {
		return term
	}
	if def, ok := ctx.terms[term]; ok {
		if def.ID == term {
			return term
		}
		return expandIRIHops(ctx, def.ID, base, false, false, hops+1)
	}

	if prefix, suffix, ok := strings.Cut(term, ":"); ok {
		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return term
		}
		if def, ok := ctx.terms[prefix]; ok {
			return expandIRIHops(ctx, def.ID, base, false, false, hops+1) + suffix
		}
		return term
	}

	switch {
	case isKeyword(term):
	case (isKey || isValueOfType) && ctx.vocab != "":
		term = ctx.vocab + term
	case !isKey:
		term = rdf.ResolveIRI(base, term)
	}
	return term
}
