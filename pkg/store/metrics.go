package store

import (
	"math"
	"strings"

	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/opt"
)

// computeMetrics fills in the per-subtree metrics from the already-interned
// children. All reductions saturate; overflow is an assertion failure under
// the debug tag and a clamped value otherwise. No warning is written without
// the tag, since debug.Log is then a no-op.
func (s *Store) computeMetrics(n *node, label opt.Option[LabelId], children []NodeId) {
	n.size = 1
	if n.kind.IsSpaces() {
		n.sizeNoSpaces = 0
	} else {
		n.sizeNoSpaces = 1
	}
	n.height = 1

	var text string
	if id, ok := label.Get(); ok {
		text = s.labels.names[id]
	}
	n.bytesLen = uint32(len(text))
	n.lineCount = satU16(strings.Count(text, "\n"))

	n.mask = kindMask(n)

	for _, c := range children {
		ch := &s.nodes[c-1]
		n.size = satAddU32(n.size, ch.size)
		if !n.kind.IsSpaces() {
			n.sizeNoSpaces = satAddU32(n.sizeNoSpaces, ch.sizeNoSpaces)
		}
		if h := ch.height + 1; h > n.height {
			n.height = h
		}
		n.bytesLen = satAddU32(n.bytesLen, ch.bytesLen)
		n.lineCount = satAddU16(n.lineCount, ch.lineCount)
		n.mask |= ch.mask
	}
	if n.kind.IsSpaces() {
		// Spacing subtrees contribute nothing to the no-space size,
		// descendants included.
		n.sizeNoSpaces = 0
	}
}

func kindMask(n *node) (m Mask) {
	k := n.kind
	if k.IsStatement() {
		m |= MaskStatement
	}
	if k.IsBranch() {
		m |= MaskBranch
	}
	if k.IsComment() {
		m |= MaskComment
	}
	if k.IsSpaces() {
		m |= MaskSpaces
	}
	return
}

func satAddU32(a, b uint32) uint32 {
	if s := a + b; s >= a {
		return s
	}
	debug.Assert(false, "u32 metric overflow (%d + %d)", a, b)
	debug.Log(nil, "metrics", "saturating u32 overflow")
	return math.MaxUint32
}

func satAddU16(a, b uint16) uint16 {
	if s := a + b; s >= a {
		return s
	}
	debug.Assert(false, "u16 metric overflow (%d + %d)", a, b)
	debug.Log(nil, "metrics", "saturating u16 overflow")
	return math.MaxUint16
}

func satU16(v int) uint16 {
	if v > math.MaxUint16 {
		debug.Assert(false, "u16 metric overflow (%d)", v)
		return math.MaxUint16
	}
	return uint16(v)
}
