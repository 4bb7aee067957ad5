// Package store implements a content-addressed arena for abstract syntax
// trees.
//
// Nodes are interned: for any (kind, label, children) triple at most one
// [NodeId] exists, enforced by a dedup index keyed by the subtree syntax
// fingerprint. Per-subtree metrics (size, height, line count, byte length)
// and three structural fingerprints are computed once at insertion and
// stored with the record, so the diff engine never re-walks the arena to
// obtain them.
//
// A Store is an ordinary owned value. Labels and nodes live for the lifetime
// of the store; ids are stable and never reused. The store is append-only:
// reads ([Store.Resolve], [Store.ResolveLabel]) need no synchronisation, but
// writers ([Store.Insert], [Store.InternLabel]) must be serialised by the
// caller, e.g. with a coarse lock shared by all producing goroutines.
package store

import (
	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store/kinds"
)

// NodeId is an opaque handle to an interned node.
//
// The zero value is invalid and never issued. Equality of NodeIds implies
// structural and label equality of the subtrees, by construction.
type NodeId uint32

// IsValid reports whether id was issued by a store.
func (id NodeId) IsValid() bool { return id != 0 }

// Store is a hash-consed arena of AST nodes plus a label interner.
type Store struct {
	labels labelTable

	nodes       []node
	childSlab   []NodeId
	noSpaceSlab []NodeId

	dedup     dedupIndex
	dedupHits uint64
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.labels.init()
	s.dedup.init()
	return s
}

// Len returns the number of interned nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Insert interns a node built from kind, an optional label and an ordered
// child list, returning its id.
//
// If an identical subtree is already present, the existing id is returned
// and the arena does not grow. Children must have been produced by this
// store. The children slice is not retained.
func (s *Store) Insert(kind kinds.Kind, label opt.Option[LabelId], children []NodeId) NodeId {
	if debug.Enabled {
		for _, c := range children {
			debug.Assert(c.IsValid() && int(c) <= len(s.nodes), "child %d out of arena", c)
		}
	}

	syntax := s.hashSyntax(kind, label, children)

	slot, existing := s.dedup.probe(syntax,
		func(id NodeId) bool {
			return s.structurallyEqual(id, kind, label, children, syntax)
		},
		func(id NodeId) uint32 { return s.nodes[id-1].syntax })
	if existing.IsValid() {
		s.dedupHits++
		debug.Log(nil, "insert", "dedup hit %v for %v", existing, kind)
		return existing
	}

	n := s.build(kind, label, children, syntax)
	s.nodes = append(s.nodes, n)
	id := NodeId(len(s.nodes))

	s.dedup.commit(slot, id)
	debug.Log(nil, "insert", "new %v kind=%v arity=%d", id, kind, len(children))
	return id
}

// Resolve returns a read-only view of the node behind id.
//
// Passing an id that was not produced by this store is checked only in debug
// builds.
func (s *Store) Resolve(id NodeId) NodeRef {
	debug.Assert(id.IsValid() && int(id) <= len(s.nodes), "resolve of foreign id %d", id)
	return NodeRef{s, id, &s.nodes[id-1]}
}

// structurallyEqual reports whether the record behind id matches the
// candidate triple. The fingerprint pre-filter makes full comparisons rare;
// equality is still confirmed field by field since fingerprints may collide.
func (s *Store) structurallyEqual(id NodeId, kind kinds.Kind, label opt.Option[LabelId], children []NodeId, syntax uint32) bool {
	n := &s.nodes[id-1]
	if n.syntax != syntax || n.kind != kind {
		return false
	}
	if n.label() != label {
		return false
	}
	if int(n.childLen) != len(children) {
		return false
	}
	for i, c := range children {
		if s.child(n, i) != c {
			return false
		}
	}
	return true
}

// build assembles a record for a triple that is known to be absent,
// computing its metrics and fingerprints and spilling wide child lists into
// the shared slab.
func (s *Store) build(kind kinds.Kind, label opt.Option[LabelId], children []NodeId, syntax uint32) node {
	n := node{
		kind:     kind,
		childLen: uint32(len(children)),
		syntax:   syntax,
	}
	if id, ok := label.Get(); ok {
		n.flags |= flagHasLabel
		n.lbl = id
	}

	switch len(children) {
	case 0:
	case 1:
		n.c0 = children[0]
	case 2:
		n.c0, n.c1 = children[0], children[1]
	default:
		n.flags |= flagSpilled
		n.c0 = NodeId(len(s.childSlab))
		s.childSlab = append(s.childSlab, children...)
	}

	n.structural = s.hashStructural(kind, children)
	n.labelFp = s.hashLabel(kind, label, children)

	s.computeMetrics(&n, label, children)
	s.attachNoSpaceChildren(&n, children)

	return n
}

// attachNoSpaceChildren stores the spacing-filtered child list, but only
// when it differs from the plain one.
func (s *Store) attachNoSpaceChildren(n *node, children []NodeId) {
	spaces := 0
	for _, c := range children {
		if s.nodes[c-1].kind.IsSpaces() {
			spaces++
		}
	}
	if spaces == 0 {
		return
	}

	n.flags |= flagHasNoSpace
	n.nsOff = uint32(len(s.noSpaceSlab))
	n.nsLen = uint32(len(children) - spaces)
	for _, c := range children {
		if !s.nodes[c-1].kind.IsSpaces() {
			s.noSpaceSlab = append(s.noSpaceSlab, c)
		}
	}
}

// child returns the i-th child of a record, decoding the inline layout.
func (s *Store) child(n *node, i int) NodeId {
	if n.flags&flagSpilled != 0 {
		return s.childSlab[int(n.c0)+i]
	}
	if i == 0 {
		return n.c0
	}
	return n.c1
}
