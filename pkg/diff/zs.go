package diff

import (
	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/store"
)

// zsForest is one side of a Zhang-Shasha sub-problem: the contiguous
// post-order slice of a subtree, re-indexed 1-based, with local leftmost
// leaf descendants and key roots.
type zsForest struct {
	view *decomp.Complete
	lo   int
	n    int
	lld  []int // 1-based
	kr   []int // ascending; the root is always last
}

func newZsForest(view *decomp.Complete, root int) *zsForest {
	lo, hi := view.DescendantsRange(root)
	n := hi - lo + 1

	f := &zsForest{view: view, lo: lo, n: n, lld: make([]int, n+1)}
	for i := 1; i <= n; i++ {
		f.lld[i] = view.Lld(lo+i-1) - lo + 1
	}

	seen := make([]bool, n+1)
	var kr []int
	for i := n; i >= 1; i-- {
		if !seen[f.lld[i]] {
			kr = append(kr, i)
			seen[f.lld[i]] = true
		}
	}
	for l, r := 0, len(kr)-1; l < r; l, r = l+1, r-1 {
		kr[l], kr[r] = kr[r], kr[l]
	}
	f.kr = kr
	return f
}

func (f *zsForest) global(i int) int { return f.lo + i - 1 }

func (f *zsForest) resolve(i int) store.NodeRef {
	return f.view.Store().Resolve(f.view.Original(f.global(i)))
}

// zsMatcher computes the Zhang-Shasha edit mapping between two small
// subtrees, using the precomputed key roots as sub-problem roots. It is the
// recovery pass run after a phase-2 link: the optimal mapping reaches the
// leaves and renamed nodes that the greedy phases cannot see.
type zsMatcher struct {
	src, dst *zsForest
	td, fd   [][]float64
}

const (
	zsCostDel = 1.0
	zsCostIns = 1.0
)

func (m *zsMatcher) updateCost(i, j int) float64 {
	sr, dr := m.src.resolve(i), m.dst.resolve(j)
	if sr.Kind() != dr.Kind() {
		// Never cheaper than a delete-insert pair.
		return zsCostDel + zsCostIns
	}
	if sr.Label() != dr.Label() {
		return 1
	}
	return 0
}

// zsMatch returns the matched same-kind pairs of the optimal edit mapping
// between the subtrees rooted at s and d, as global post-order index pairs.
func zsMatch(srcView *decomp.Complete, s int, dstView *decomp.Complete, d int) [][2]int {
	m := &zsMatcher{src: newZsForest(srcView, s), dst: newZsForest(dstView, d)}
	m.computeTreeDist()
	return m.computeMappings()
}

func (m *zsMatcher) computeTreeDist() {
	n1, n2 := m.src.n, m.dst.n
	m.td = makeMatrix(n1+1, n2+1)
	m.fd = makeMatrix(n1+1, n2+1)

	for _, i := range m.src.kr {
		for _, j := range m.dst.kr {
			m.forestDist(i, j)
		}
	}
}

func (m *zsMatcher) forestDist(i, j int) {
	li, lj := m.src.lld[i], m.dst.lld[j]
	m.fd[li-1][lj-1] = 0

	for di := li; di <= i; di++ {
		m.fd[di][lj-1] = m.fd[di-1][lj-1] + zsCostDel
	}
	for dj := lj; dj <= j; dj++ {
		m.fd[li-1][dj] = m.fd[li-1][dj-1] + zsCostIns
	}

	for di := li; di <= i; di++ {
		for dj := lj; dj <= j; dj++ {
			if m.src.lld[di] == li && m.dst.lld[dj] == lj {
				m.fd[di][dj] = min3(
					m.fd[di-1][dj]+zsCostDel,
					m.fd[di][dj-1]+zsCostIns,
					m.fd[di-1][dj-1]+m.updateCost(di, dj),
				)
				m.td[di][dj] = m.fd[di][dj]
			} else {
				m.fd[di][dj] = min3(
					m.fd[di-1][dj]+zsCostDel,
					m.fd[di][dj-1]+zsCostIns,
					m.fd[m.src.lld[di]-1][m.dst.lld[dj]-1]+m.td[di][dj],
				)
			}
		}
	}
}

// computeMappings backtracks the distance tables, collecting the node pairs
// the optimal script keeps (possibly relabelled). Kind-mismatched pairs are
// dropped; they only arise when an update ties a delete-insert pair.
func (m *zsMatcher) computeMappings() [][2]int {
	var out [][2]int

	treePairs := [][2]int{{m.src.n, m.dst.n}}
	rootPair := true

	for len(treePairs) > 0 {
		last := treePairs[len(treePairs)-1]
		treePairs = treePairs[:len(treePairs)-1]
		lastRow, lastCol := last[0], last[1]

		// The distance phase leaves fd populated for the root pair; inner
		// sub-problems recompute it.
		if !rootPair {
			m.forestDist(lastRow, lastCol)
		}
		rootPair = false

		firstRow, firstCol := m.src.lld[lastRow]-1, m.dst.lld[lastCol]-1
		row, col := lastRow, lastCol

		for row > firstRow || col > firstCol {
			switch {
			case row > firstRow && m.fd[row-1][col]+zsCostDel == m.fd[row][col]:
				row--
			case col > firstCol && m.fd[row][col-1]+zsCostIns == m.fd[row][col]:
				col--
			case m.src.lld[row]-1 == firstRow && m.dst.lld[col]-1 == firstCol:
				if m.src.resolve(row).Kind() == m.dst.resolve(col).Kind() {
					out = append(out, [2]int{m.src.global(row), m.dst.global(col)})
				}
				row--
				col--
			default:
				treePairs = append(treePairs, [2]int{row, col})
				row = m.src.lld[row] - 1
				col = m.dst.lld[col] - 1
			}
		}
	}
	return out
}

func makeMatrix(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := range m {
		m[i] = make([]float64, c)
	}
	return m
}

func min3(a, b, c float64) float64 {
	return min(min(a, b), c)
}
