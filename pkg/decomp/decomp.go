// Package decomp materialises post-order views of interned subtrees.
//
// The diff engine works over dense integer indices rather than node ids: a
// view linearises the subtree rooted at an id into left-to-right post-order
// and keeps per-index metadata (leftmost-leaf descendants, parents, key
// roots) in parallel arrays, chosen for cache locality in the tight matcher
// loops. Views borrow the store immutably and are owned by one diff session.
//
// [Complete] decompresses the whole subtree up front. [Lazy] materialises
// nodes on demand and is preferred when only a small portion of a large tree
// is inspected, as in top-down subtree matching over tall trees.
package decomp

import (
	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/store"
)

// Complete is a fully materialised post-order view.
//
// The root has the highest index; the descendants of node i occupy the
// contiguous range [lld(i), i).
type Complete struct {
	st *store.Store

	idCompressed []store.NodeId
	lld          []uint32
	idParent     []uint32
	kr           []bool

	leafCount int
}

// New decompresses the subtree rooted at root into a complete view.
func New(st *store.Store, root store.NodeId) *Complete {
	n := int(st.Resolve(root).Size())
	d := &Complete{
		st:           st,
		idCompressed: make([]store.NodeId, n),
		lld:          make([]uint32, n),
		idParent:     make([]uint32, n),
		kr:           make([]bool, n),
	}

	type frame struct {
		ref  store.NodeRef
		next int
		kids []int // emitted indices of direct children
	}

	stack := make([]frame, 1, 16)
	stack[0] = frame{ref: st.Resolve(root)}
	idx := 0

	for len(stack) > 0 {
		top := len(stack) - 1
		if f := &stack[top]; f.next < f.ref.ChildCount() {
			c := f.ref.Child(f.next)
			f.next++
			stack = append(stack, frame{ref: st.Resolve(c)})
			continue
		}

		// Ascend: emit the node, fix up its lld and its children's
		// parent links.
		f := stack[top]
		i := idx
		idx++
		d.idCompressed[i] = f.ref.Id()
		if len(f.kids) == 0 {
			d.lld[i] = uint32(i)
		} else {
			d.lld[i] = d.lld[f.kids[0]]
		}
		for _, k := range f.kids {
			d.idParent[k] = uint32(i)
		}

		stack = stack[:top]
		if len(stack) > 0 {
			p := &stack[len(stack)-1]
			p.kids = append(p.kids, i)
		}
	}

	debug.Assert(idx == n, "post-order emitted %d of %d nodes", idx, n)
	d.idParent[n-1] = uint32(n - 1) // the root parents itself

	d.computeKeyRoots()
	return d
}

// computeKeyRoots marks every index whose leftmost-leaf descendant is not
// shared with a later index, in one linear backward pass.
func (d *Complete) computeKeyRoots() {
	visited := make([]bool, len(d.lld))
	for i := len(d.lld) - 1; i >= 0; i-- {
		l := d.lld[i]
		if !visited[l] {
			d.kr[i] = true
			visited[l] = true
		}
		if d.lld[i] == uint32(i) {
			d.leafCount++
		}
	}
}

// Len returns the number of nodes in the view.
func (d *Complete) Len() int { return len(d.idCompressed) }

// Root returns the index of the root, always Len()-1.
func (d *Complete) Root() int { return len(d.idCompressed) - 1 }

// Original returns the interned id behind index i.
func (d *Complete) Original(i int) store.NodeId { return d.idCompressed[i] }

// Lld returns the leftmost-leaf-descendant index of i; for leaves this is i
// itself.
func (d *Complete) Lld(i int) int { return int(d.lld[i]) }

// LeafCount returns the number of leaves in the view.
func (d *Complete) LeafCount() int { return d.leafCount }

// Parent returns the parent index of i; the root parents itself.
func (d *Complete) Parent(i int) int { return int(d.idParent[i]) }

// HasParent reports whether i is not the root.
func (d *Complete) HasParent(i int) bool { return int(d.idParent[i]) != i }

// Children returns the direct child indices of i, left to right.
func (d *Complete) Children(i int) []int {
	if d.lld[i] == uint32(i) {
		return nil
	}
	var out []int
	for c := i - 1; c >= int(d.lld[i]); c = int(d.lld[c]) - 1 {
		out = append(out, c)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// PositionInParent returns the index of i among its parent's children.
func (d *Complete) PositionInParent(i int) int {
	p := int(d.idParent[i])
	pos := 0
	for j := int(d.lld[p]); j < i; j++ {
		if int(d.idParent[j]) == p {
			pos++
		}
	}
	return pos
}

// DescendantsRange returns the inclusive index range [lld(i), i] covering i
// and all its descendants.
func (d *Complete) DescendantsRange(i int) (lo, hi int) {
	return int(d.lld[i]), i
}

// Descendants returns the proper descendant indices of i, in post-order.
func (d *Complete) Descendants(i int) []int {
	lo := int(d.lld[i])
	out := make([]int, 0, i-lo)
	for j := lo; j < i; j++ {
		out = append(out, j)
	}
	return out
}

// DescendantCount returns the number of proper descendants of i.
func (d *Complete) DescendantCount(i int) int { return i - int(d.lld[i]) }

// Store returns the backing store.
func (d *Complete) Store() *store.Store { return d.st }
