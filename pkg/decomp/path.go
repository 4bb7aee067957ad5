package decomp

import (
	"strconv"
	"strings"

	"github.com/flier/astdiff/internal/debug"
)

// Path names a node by the sequence of child indices leading to it from a
// root. Paths stay valid across arena reuse, unlike raw view indices.
type Path []uint16

// Extend returns a copy of p with idx appended.
func (p Path) Extend(idx ...uint16) Path {
	out := make(Path, 0, len(p)+len(idx))
	out = append(out, p...)
	return append(out, idx...)
}

// Equal reports whether two paths name the same position.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	if len(p) == 0 {
		return "ε"
	}
	var b strings.Builder
	for i, idx := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(int(idx)))
	}
	return b.String()
}

// Path returns the child-index path from ancestor from to descendant to.
// The child indices are recovered by sibling counting over the parent array,
// bucketed by the lld ranges.
func (d *Complete) Path(from, to int) Path {
	var r Path
	curr := to
	for curr != from {
		p := int(d.idParent[curr])
		debug.Assert(p != curr, "path target %d does not descend from %d", to, from)

		idx := 0
		for j := int(d.lld[p]); j < curr; j++ {
			if int(d.idParent[j]) == p {
				idx++
			}
		}
		r = append(r, uint16(idx))
		curr = p
	}
	for l, rr := 0, len(r)-1; l < rr; l, rr = l+1, rr-1 {
		r[l], r[rr] = r[rr], r[l]
	}
	return r
}

// Child descends from index x along a child-index path.
func (d *Complete) Child(x int, path ...uint16) int {
	for _, idx := range path {
		x = d.Children(x)[idx]
	}
	return x
}
