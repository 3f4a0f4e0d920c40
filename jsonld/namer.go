package jsonld

import "strconv"

// UniqueNamer issues blank node identifiers with a fixed prefix. An old
// identifier always maps to the same new one; names are issued in
// first-seen order.
type UniqueNamer struct {
	prefix  string
	counter int
	names   map[string]string
	order   []string
}

// NewUniqueNamer returns a namer issuing prefix0, prefix1, ...
func NewUniqueNamer(prefix string) *UniqueNamer {
	return &UniqueNamer{prefix: prefix, names: map[string]string{}}
}

// Name returns the name issued for old, issuing a new one if needed. An empty
// old always issues a fresh, unrecorded name.
func (n *UniqueNamer) Name(old string) string {
	if old != "" {
		if name, ok := n.names[old]; ok {
			return name
		}
	}
	name := n.prefix + strconv.Itoa(n.counter)
	n.counter++
	if old != "" {
		n.names[old] = name
		n.order = append(n.order, old)
	}
	return name
}

// Has reports whether old has been named.
func (n *UniqueNamer) Has(old string) bool {
	_, ok := n.names[old]
	return ok
}

// Issued returns the old identifiers in the order they were named.
func (n *UniqueNamer) Issued() []string {
	return append([]string(nil), n.order...)
}

// Clone returns an independent copy.
func (n *UniqueNamer) Clone() *UniqueNamer {
	c := &UniqueNamer{
		prefix:  n.prefix,
		counter: n.counter,
		names:   make(map[string]string, len(n.names)),
		order:   append([]string(nil), n.order...),
	}
	for k, v := range n.names {
		c.names[k] = v
	}
	return c
}
