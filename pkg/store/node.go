package store

import (
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store/kinds"
)

type nodeFlags uint8

const (
	flagHasLabel nodeFlags = 1 << iota
	flagSpilled            // children live in the shared slab, c0 is the offset
	flagHasNoSpace
)

// Mask is the precomputed-query bitmask of a subtree: one bit per interesting
// content kind, folded up from the children at insertion. Consumers use it to
// skip whole subtrees without resolving them.
type Mask uint8

const (
	// MaskStatement is set when the subtree contains a statement kind.
	MaskStatement Mask = 1 << iota
	// MaskBranch is set when the subtree contains a branching kind.
	MaskBranch
	// MaskComment is set when the subtree contains a comment kind.
	MaskComment
	// MaskSpaces is set when the subtree contains spacing.
	MaskSpaces
)

// node is the interned record. Child lists of arity 0, 1 and 2 are stored
// inline in c0/c1; wider lists spill into the store's shared slab with c0
// holding the offset. A record never changes after insertion.
type node struct {
	kind  kinds.Kind
	flags nodeFlags
	mask  Mask
	lbl   LabelId

	childLen uint32
	c0, c1   NodeId

	nsOff, nsLen uint32

	structural uint32
	labelFp    uint32
	syntax     uint32

	size         uint32
	sizeNoSpaces uint32
	bytesLen     uint32
	height       uint32
	lineCount    uint16
}

func (n *node) label() opt.Option[LabelId] {
	if n.flags&flagHasLabel == 0 {
		return opt.None[LabelId]()
	}
	return opt.Some(n.lbl)
}

// NodeRef is a read-only view of an interned node. It borrows the store and
// stays valid for the store's lifetime.
type NodeRef struct {
	s  *Store
	id NodeId
	n  *node
}

// Id returns the handle this view resolves.
func (r NodeRef) Id() NodeId { return r.id }

// Kind returns the node kind.
func (r NodeRef) Kind() kinds.Kind { return r.n.kind }

// Label returns the node label, if any.
func (r NodeRef) Label() opt.Option[LabelId] { return r.n.label() }

// HasLabel reports whether the node carries a label.
func (r NodeRef) HasLabel() bool { return r.n.flags&flagHasLabel != 0 }

// LabelString resolves the label text; empty when the node has no label.
func (r NodeRef) LabelString() string {
	if !r.HasLabel() {
		return ""
	}
	return r.s.ResolveLabel(r.n.lbl)
}

// ChildCount returns the arity.
func (r NodeRef) ChildCount() int { return int(r.n.childLen) }

// Child returns the i-th child id.
func (r NodeRef) Child(i int) NodeId { return r.s.child(r.n, i) }

// Children returns the ordered child ids.
//
// For spilled records the returned slice aliases the store's slab; callers
// must not mutate it. Hot paths should prefer [NodeRef.ChildCount] and
// [NodeRef.Child], which do not allocate for the inline layouts.
func (r NodeRef) Children() []NodeId {
	switch r.n.childLen {
	case 0:
		return nil
	case 1:
		return []NodeId{r.n.c0}
	case 2:
		return []NodeId{r.n.c0, r.n.c1}
	default:
		off := int(r.n.c0)
		return r.s.childSlab[off : off+int(r.n.childLen)]
	}
}

// NoSpaceChildren returns the child list with spacing nodes filtered out.
// When no child is a spacing node this is the plain child list.
func (r NodeRef) NoSpaceChildren() []NodeId {
	if r.n.flags&flagHasNoSpace == 0 {
		return r.Children()
	}
	return r.s.noSpaceSlab[r.n.nsOff : r.n.nsOff+r.n.nsLen]
}

// Hash returns the fingerprint of the requested kind.
func (r NodeRef) Hash(kind HashKind) uint32 {
	switch kind {
	case HashStructural:
		return r.n.structural
	case HashLabel:
		return r.n.labelFp
	default:
		return r.n.syntax
	}
}

// Size returns the number of nodes in the subtree, this node included.
func (r NodeRef) Size() uint32 { return r.n.size }

// SizeNoSpaces is Size with spacing subtrees excluded.
func (r NodeRef) SizeNoSpaces() uint32 { return r.n.sizeNoSpaces }

// Height returns the height of the subtree; leaves have height 1.
func (r NodeRef) Height() uint32 { return r.n.height }

// LineCount returns the number of line breaks spanned by the subtree.
func (r NodeRef) LineCount() uint16 { return r.n.lineCount }

// BytesLen returns the byte length of the concatenated label text of the
// subtree, preserving bit-exact textual round-tripping.
func (r NodeRef) BytesLen() uint32 { return r.n.bytesLen }

// Mask returns the precomputed-query bitmask.
func (r NodeRef) Mask() Mask { return r.n.mask }
