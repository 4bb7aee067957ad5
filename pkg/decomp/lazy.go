package decomp

import (
	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/store"
)

// Lazy is a post-order view that materialises nodes on demand.
//
// Index numbering is identical to [Complete]'s: the subtree size metric
// fixes every node's post-order position without walking it, so a node's
// index, lld and descendant range are known as soon as its parent has been
// expanded. Only [Lazy.Children] materialises; everything below the current
// frontier stays untouched in the arena. Top-down matching over tall trees
// typically inspects a small fraction of the nodes, which is exactly the
// case this variant exists for.
type Lazy struct {
	st *store.Store

	idCompressed []store.NodeId
	idParent     []uint32
	filled       []bool
	children     [][]int
}

// NewLazy creates a lazy view over the subtree rooted at root. Only the
// root itself is materialised.
func NewLazy(st *store.Store, root store.NodeId) *Lazy {
	n := int(st.Resolve(root).Size())
	d := &Lazy{
		st:           st,
		idCompressed: make([]store.NodeId, n),
		idParent:     make([]uint32, n),
		filled:       make([]bool, n),
		children:     make([][]int, n),
	}
	d.idCompressed[n-1] = root
	d.idParent[n-1] = uint32(n - 1)
	d.filled[n-1] = true
	return d
}

// Len returns the total number of nodes, materialised or not.
func (d *Lazy) Len() int { return len(d.idCompressed) }

// Root returns the root index.
func (d *Lazy) Root() int { return len(d.idCompressed) - 1 }

// Original returns the interned id behind a materialised index.
func (d *Lazy) Original(i int) store.NodeId {
	debug.Assert(d.filled[i], "index %d is beyond the decompression frontier", i)
	return d.idCompressed[i]
}

// Parent returns the parent of a materialised index; the root parents
// itself.
func (d *Lazy) Parent(i int) int { return int(d.idParent[i]) }

// HasParent reports whether i is not the root.
func (d *Lazy) HasParent(i int) bool { return int(d.idParent[i]) != i }

// Lld returns the leftmost-leaf descendant of a materialised index, derived
// from the stored subtree size.
func (d *Lazy) Lld(i int) int {
	return i - int(d.st.Resolve(d.Original(i)).Size()) + 1
}

// DescendantsRange returns the inclusive range [lld(i), i].
func (d *Lazy) DescendantsRange(i int) (lo, hi int) { return d.Lld(i), i }

// Children materialises and returns the direct child indices of i.
//
// The children's positions follow from their subtree sizes: the last child
// ends at i-1, each previous one ends where the next begins.
func (d *Lazy) Children(i int) []int {
	if cs := d.children[i]; cs != nil {
		return cs
	}

	ref := d.st.Resolve(d.Original(i))
	n := ref.ChildCount()
	if n == 0 {
		return nil
	}

	cs := make([]int, n)
	pos := i - 1
	for k := n - 1; k >= 0; k-- {
		c := ref.Child(k)
		cs[k] = pos
		d.idCompressed[pos] = c
		d.idParent[pos] = uint32(i)
		d.filled[pos] = true
		pos -= int(d.st.Resolve(c).Size())
	}
	d.children[i] = cs
	return cs
}

// PositionInParent returns the index of a materialised i among its parent's
// children.
func (d *Lazy) PositionInParent(i int) int {
	for pos, c := range d.Children(d.Parent(i)) {
		if c == i {
			return pos
		}
	}
	debug.Assert(false, "index %d missing from its parent's children", i)
	return -1
}

// Parents returns the materialised ancestor chain of i, nearest first.
func (d *Lazy) Parents(i int) []int {
	var out []int
	for d.HasParent(i) {
		i = d.Parent(i)
		out = append(out, i)
	}
	return out
}

// Complete finishes the decompression, returning the equivalent complete
// view. Index numbering is preserved.
func (d *Lazy) Complete() *Complete {
	return New(d.st, d.idCompressed[d.Root()])
}

// Store returns the backing store.
func (d *Lazy) Store() *store.Store { return d.st }
