package store

import (
	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store/kinds"
)

// Builder accumulates the construction events of one tree and interns it
// bottom-up. External parsers drive it with Open/Label/Close while walking
// their own syntax tree; every Close interns the finished node, so parents
// only ever see ids.
//
// A Builder is reusable after Finish. It is not safe for concurrent use.
type Builder struct {
	st    *Store
	stack []frame
	free  [][]NodeId
	last  NodeId
}

type frame struct {
	kind     kinds.Kind
	label    opt.Option[LabelId]
	children []NodeId
}

// NewBuilder creates a builder interning into st.
func NewBuilder(st *Store) *Builder {
	return &Builder{st: st}
}

// Open starts a node of the given kind.
func (b *Builder) Open(kind kinds.Kind) {
	b.stack = append(b.stack, frame{kind: kind, children: b.acquire()})
}

// Label attaches a label to the innermost open node.
func (b *Builder) Label(s string) {
	debug.Assert(len(b.stack) > 0, "Label without an open node")
	if len(b.stack) == 0 {
		return
	}
	b.stack[len(b.stack)-1].label = opt.Some(b.st.InternLabel(s))
}

// Close interns the innermost open node and hands its id to the parent.
func (b *Builder) Close() NodeId {
	debug.Assert(len(b.stack) > 0, "Close without an open node")
	if len(b.stack) == 0 {
		return 0
	}

	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	id := b.st.Insert(f.kind, f.label, f.children)
	b.release(f.children)

	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.children = append(top.children, id)
	}
	b.last = id
	return id
}

// Finish closes any nodes still open and returns the root id.
func (b *Builder) Finish() NodeId {
	for len(b.stack) > 0 {
		b.Close()
	}
	return b.last
}

// acquire hands out a pending child slice, reusing retired ones.
func (b *Builder) acquire() []NodeId {
	if n := len(b.free); n > 0 {
		s := b.free[n-1]
		b.free = b.free[:n-1]
		return s[:0]
	}
	return nil
}

func (b *Builder) release(s []NodeId) {
	if cap(s) > 0 {
		b.free = append(b.free, s)
	}
}
