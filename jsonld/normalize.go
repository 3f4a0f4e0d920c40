package jsonld

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
	"sort"
	"strings"

	"bitbucket.org/creachadair/stringset"

	"github.com/geoknoesis/jsonld-go/rdf"
)

const (
	canonicalPrefix = "_:c14n"
	temporaryPrefix = "_:b"
)

func hashFunc(name string) (func() hash.Hash, error) {
	switch strings.ToUpper(name) {
	case HashSHA256, "SHA256":
		return sha256.New, nil
	case HashSHA1, "SHA1":
		return sha1.New, nil
	}
	return nil, &Error{Code: ErrCodeHashUnavailable, Message: "unsupported hash algorithm " + name}
}

// canonicalizer relabels the blank nodes of a dataset so that isomorphic
// datasets serialize identically.
type canonicalizer struct {
	ctx     context.Context
	opts    Options
	newHash func() hash.Hash

	quads []rdf.Quad
	// mentions maps each blank node to the indexes of the quads it occurs in.
	mentions    map[string][]int
	firstDegree map[string]string
	canonical   *UniqueNamer

	permutations int
}

// canonicalize returns quads with canonical blank node labels, sorted by
// their N-Quads form.
func canonicalize(ctx context.Context, quads []rdf.Quad, opts Options) ([]rdf.Quad, error) {
	newHash, err := hashFunc(opts.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	c := &canonicalizer{
		ctx:         ctx,
		opts:        opts,
		newHash:     newHash,
		mentions:    map[string][]int{},
		firstDegree: map[string]string{},
		canonical:   NewUniqueNamer(canonicalPrefix),
	}
	c.index(quads)
	if err := c.issue(); err != nil {
		return nil, err
	}
	return c.relabel(), nil
}

// index deduplicates quads and records which quads mention each blank node.
func (c *canonicalizer) index(quads []rdf.Quad) {
	seen := stringset.New()
	for _, q := range quads {
		line := rdf.FormatQuad(q)
		if seen.Contains(line) {
			continue
		}
		seen.Add(line)
		i := len(c.quads)
		c.quads = append(c.quads, q)
		for _, t := range []rdf.Term{q.S, q.O, q.G} {
			b, ok := t.(rdf.BlankNode)
			if !ok {
				continue
			}
			id := b.String()
			if m := c.mentions[id]; len(m) == 0 || m[len(m)-1] != i {
				c.mentions[id] = append(m, i)
			}
		}
	}
}

func (c *canonicalizer) hash(data string) string {
	h := c.newHash()
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// issue assigns canonical identifiers: first to blank nodes with a unique
// first-degree hash, then to the rest in N-degree hash order.
func (c *canonicalizer) issue() error {
	byHash := map[string][]string{}
	for _, id := range sortedKeys(c.mentions) {
		h := c.hashFirstDegree(id)
		c.firstDegree[id] = h
		byHash[h] = append(byHash[h], id)
	}

	for simple := true; simple; {
		simple = false
		for _, h := range sortedKeys(byHash) {
			ids := byHash[h]
			if len(ids) > 1 {
				continue
			}
			c.canonical.Name(ids[0])
			delete(byHash, h)
			simple = true
		}
	}
	c.opts.Logger.Debug("canonicalize first degree",
		slog.Int("blank_nodes", len(c.mentions)),
		slog.Int("unique", len(c.canonical.Issued())),
		slog.Int("shared_hashes", len(byHash)))

	for _, h := range sortedKeys(byHash) {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		type pathResult struct {
			hash   string
			issuer *UniqueNamer
		}
		var results []pathResult
		for _, id := range byHash[h] {
			if c.canonical.Has(id) {
				continue
			}
			issuer := NewUniqueNamer(temporaryPrefix)
			issuer.Name(id)
			hash, issuer, err := c.hashNDegree(id, issuer)
			if err != nil {
				return err
			}
			results = append(results, pathResult{hash: hash, issuer: issuer})
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].hash < results[j].hash })
		for _, r := range results {
			for _, old := range r.issuer.Issued() {
				c.canonical.Name(old)
			}
		}
	}
	c.opts.Logger.Debug("canonicalize complete",
		slog.Int("quads", len(c.quads)),
		slog.Int("permutations", c.permutations))
	return nil
}

// hashFirstDegree hashes the quads mentioning id with id replaced by _:a
// and every other blank node by _:z.
func (c *canonicalizer) hashFirstDegree(id string) string {
	lines := make([]string, 0, len(c.mentions[id]))
	for _, i := range c.mentions[id] {
		q := c.quads[i]
		q.S = placeholder(q.S, id)
		q.O = placeholder(q.O, id)
		q.G = placeholder(q.G, id)
		lines = append(lines, rdf.FormatQuad(q))
	}
	sort.Strings(lines)
	return c.hash(strings.Join(lines, ""))
}

func placeholder(t rdf.Term, id string) rdf.Term {
	b, ok := t.(rdf.BlankNode)
	if !ok {
		return t
	}
	if b.String() == id {
		return rdf.BlankNode{ID: "a"}
	}
	return rdf.BlankNode{ID: "z"}
}

// hashRelated hashes a blank node adjacent to the node being hashed, by its
// position in q and its current best identifier.
func (c *canonicalizer) hashRelated(related string, q rdf.Quad, issuer *UniqueNamer, position string) string {
	var id string
	switch {
	case c.canonical.Has(related):
		id = c.canonical.Name(related)
	case issuer.Has(related):
		id = issuer.Name(related)
	default:
		id = c.firstDegree[related]
	}
	input := position
	if position != "g" {
		input += "<" + q.P.Value + ">"
	}
	return c.hash(input + id)
}

// hashNDegree computes the path hash of id by exploring every ordering of
// its related blank nodes, keeping the lexicographically least path.
func (c *canonicalizer) hashNDegree(id string, issuer *UniqueNamer) (string, *UniqueNamer, error) {
	if err := c.ctx.Err(); err != nil {
		return "", nil, err
	}

	related := c.relatedGroups(id, issuer)

	var data strings.Builder
	for _, h := range sortedKeys(related) {
		data.WriteString(h)

		nodes := related[h]
		if err := c.checkPermutations(len(nodes)); err != nil {
			return "", nil, err
		}

		var chosenPath string
		var chosenIssuer *UniqueNamer
		perm := append([]string(nil), nodes...)
		sort.Strings(perm)
		for ok := true; ok; ok = nextPermutation(perm) {
			if err := c.spend(); err != nil {
				return "", nil, err
			}
			issuerCopy := issuer.Clone()
			var path strings.Builder
			var recursion []string
			skip := false

			for _, r := range perm {
				if c.canonical.Has(r) {
					path.WriteString(c.canonical.Name(r))
				} else {
					if !issuerCopy.Has(r) {
						recursion = append(recursion, r)
					}
					path.WriteString(issuerCopy.Name(r))
				}
				if worsePath(path.String(), chosenPath) {
					skip = true
					break
				}
			}
			if skip {
				continue
			}

			for _, r := range recursion {
				result, resultIssuer, err := c.hashNDegree(r, issuerCopy)
				if err != nil {
					return "", nil, err
				}
				path.WriteString(issuerCopy.Name(r))
				path.WriteString("<" + result + ">")
				issuerCopy = resultIssuer
				if worsePath(path.String(), chosenPath) {
					skip = true
					break
				}
			}
			if skip {
				continue
			}

			if chosenIssuer == nil || path.String() < chosenPath {
				chosenPath = path.String()
				chosenIssuer = issuerCopy
			}
		}

		data.WriteString(chosenPath)
		issuer = chosenIssuer
	}
	return c.hash(data.String()), issuer, nil
}

// relatedGroups groups the blank nodes adjacent to id by their related hash.
// A node is listed once per quad position it occupies.
func (c *canonicalizer) relatedGroups(id string, issuer *UniqueNamer) map[string][]string {
	related := map[string][]string{}
	for _, i := range c.mentions[id] {
		q := c.quads[i]
		for _, pos := range []struct {
			term rdf.Term
			name string
		}{{q.S, "s"}, {q.O, "o"}, {q.G, "g"}} {
			b, ok := pos.term.(rdf.BlankNode)
			if !ok || b.String() == id {
				continue
			}
			h := c.hashRelated(b.String(), q, issuer, pos.name)
			related[h] = append(related[h], b.String())
		}
	}
	return related
}

// worsePath reports whether path can no longer beat chosen.
func worsePath(path, chosen string) bool {
	return chosen != "" && len(path) >= len(chosen) && path > chosen
}

// checkPermutations fails when n! alone exceeds the permutation ceiling.
func (c *canonicalizer) checkPermutations(n int) error {
	limit := c.opts.MaxPermutations
	if limit < 0 {
		return nil
	}
	total := 1
	for i := 2; i <= n; i++ {
		total *= i
		if total > limit {
			return &Error{
				Code:    ErrCodeCanonicalizationTimeout,
				Message: "blank node group needs more permutations than allowed",
			}
		}
	}
	return nil
}

// spend counts one permutation against the ceiling shared by the whole
// canonicalization run.
func (c *canonicalizer) spend() error {
	c.permutations++
	if limit := c.opts.MaxPermutations; limit >= 0 && c.permutations > limit {
		return &Error{
			Code:    ErrCodeCanonicalizationTimeout,
			Message: fmt.Sprintf("canonicalization needs more than %d permutations", limit),
		}
	}
	return nil
}

// nextPermutation advances s to the next lexicographic permutation and
// reports whether one exists.
func nextPermutation(s []string) bool {
	i := len(s) - 2
	for i >= 0 && s[i] >= s[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(s) - 1
	for s[j] <= s[i] {
		j--
	}
	s[i], s[j] = s[j], s[i]
	for l, r := i+1, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
	return true
}

// relabel applies the canonical identifiers and sorts the result.
func (c *canonicalizer) relabel() []rdf.Quad {
	out := make([]rdf.Quad, len(c.quads))
	lines := make(map[int]string, len(c.quads))
	for i, q := range c.quads {
		q.S = c.relabelTerm(q.S)
		q.O = c.relabelTerm(q.O)
		q.G = c.relabelTerm(q.G)
		out[i] = q
		lines[i] = rdf.FormatQuad(q)
	}
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return lines[order[a]] < lines[order[b]] })
	sorted := make([]rdf.Quad, len(out))
	for i, idx := range order {
		sorted[i] = out[idx]
	}
	return sorted
}

func (c *canonicalizer) relabelTerm(t rdf.Term) rdf.Term {
	if b, ok := t.(rdf.BlankNode); ok {
		return rdf.NewBlankNode(c.canonical.Name(b.String()))
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
