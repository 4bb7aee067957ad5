package diff

import (
	"math"
	"sort"

	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/store"
)

// subtreeMatcher is the greedy top-down phase: it walks both trees from the
// tallest subtrees down, maps maximal isomorphic subtrees in bulk, and
// resolves ambiguous candidates with a similarity-ordered greedy pass.
type subtreeMatcher struct {
	src, dst  View
	mappings  *Mapping
	minHeight int
}

// matchGreedySubtrees runs phase 1, filling mappings.
func matchGreedySubtrees(src, dst View, mappings *Mapping, minHeight int) {
	mappings.Topit(src.Len(), dst.Len())

	m := &subtreeMatcher{src: src, dst: dst, mappings: mappings, minHeight: minHeight}
	mm := NewMultiMapping(src.Len(), dst.Len())
	m.matchToBeFiltered(mm)
	m.filterMappings(mm)
}

// matchToBeFiltered descends both priority lists in lockstep, linking every
// isomorphic (src, dst) pair of the current height into the multi-mapping
// and opening whatever found no partner.
func (m *subtreeMatcher) matchToBeFiltered(mm *MultiMapping) {
	srcTrees := newPriorityList(m.src, m.minHeight)
	dstTrees := newPriorityList(m.dst, m.minHeight)

	for srcTrees.peekHeight() != -1 && dstTrees.peekHeight() != -1 {
		for srcTrees.peekHeight() != dstTrees.peekHeight() {
			m.popLarger(srcTrees, dstTrees)
			if srcTrees.peekHeight() == -1 || dstTrees.peekHeight() == -1 {
				return
			}
		}

		currentSrc := srcTrees.pop()
		currentDst := dstTrees.pop()

		srcMarks := make([]bool, len(currentSrc))
		dstMarks := make([]bool, len(currentDst))

		for i, s := range currentSrc {
			for j, d := range currentDst {
				if m.isomorphic(s, d) {
					mm.Link(s, d)
					srcMarks[i] = true
					dstMarks[j] = true
				}
			}
		}

		for i, marked := range srcMarks {
			if !marked {
				srcTrees.openTree(currentSrc[i])
			}
		}
		for j, marked := range dstMarks {
			if !marked {
				dstTrees.openTree(currentDst[j])
			}
		}

		srcTrees.updateHeight()
		dstTrees.updateHeight()
	}
}

func (m *subtreeMatcher) popLarger(srcTrees, dstTrees *priorityList) {
	if srcTrees.peekHeight() > dstTrees.peekHeight() {
		srcTrees.open()
	} else {
		dstTrees.open()
	}
}

// filterMappings reduces the multi-mapping to a bijection: unique pairs are
// committed first, then the ambiguous remainder in similarity order.
func (m *subtreeMatcher) filterMappings(mm *MultiMapping) {
	var ambiguous [][2]int
	ignored := make([]bool, m.src.Len())

	for _, src := range mm.AllMappedSrcs() {
		unique := false
		if mm.IsSrcUnique(src) {
			dst := mm.Dsts(src)[0]
			if mm.IsDstUnique(dst) {
				m.addMappingRecursively(src, dst)
				unique = true
			}
		}

		if !ignored[src] && !unique {
			adsts := mm.Dsts(src)
			asrcs := mm.Srcs(adsts[0])
			for _, as := range asrcs {
				for _, ad := range adsts {
					ambiguous = append(ambiguous, [2]int{as, ad})
				}
			}
			for _, as := range asrcs {
				ignored[as] = true
			}
		}
	}

	m.sortAmbiguous(ambiguous)

	srcIgnored := make([]bool, m.src.Len())
	dstIgnored := make([]bool, m.dst.Len())
	for _, pair := range ambiguous {
		s, d := pair[0], pair[1]
		if srcIgnored[s] || dstIgnored[d] {
			continue
		}
		m.addMappingRecursively(s, d)

		sLo, sHi := m.src.DescendantsRange(s)
		for i := sLo; i <= sHi; i++ {
			srcIgnored[i] = true
		}
		dLo, dHi := m.dst.DescendantsRange(d)
		for j := dLo; j <= dHi; j++ {
			dstIgnored[j] = true
		}
	}
}

// addMappingRecursively links a pair of isomorphic subtrees wholesale. The
// descendant ranges being contiguous and the subtrees isomorphic, the
// post-orders align index by index.
func (m *subtreeMatcher) addMappingRecursively(s, d int) {
	m.mappings.Link(s, d)

	sLo, _ := m.src.DescendantsRange(s)
	dLo, _ := m.dst.DescendantsRange(d)
	debug.Assert(s-sLo == d-dLo, "isomorphic subtrees with differing sizes: %d vs %d", s-sLo, d-dLo)
	for k := 0; k < s-sLo; k++ {
		m.mappings.Link(sLo+k, dLo+k)
	}
}

// sortAmbiguous orders candidate pairs by: dice similarity of the parents'
// already-mapped descendants (desc), ancestor kind+label LCS ratio (desc),
// positional ancestor similarity (asc), then post-order index delta (asc).
// Pairs under the same parents compare equal on the first two keys.
func (m *subtreeMatcher) sortAmbiguous(pairs [][2]int) {
	sibSim := map[[2]int]float64{}
	parentSim := map[[2]int]float64{}
	posSim := map[[2]int]float64{}

	cached := func(cache map[[2]int]float64, f func([2]int) float64, l [2]int) float64 {
		if v, ok := cache[l]; ok {
			return v
		}
		v := f(l)
		cache[l] = v
		return v
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]

		if !m.sameParents(a, b) {
			if c := cmpFloat(cached(sibSim, m.coefSib, b), cached(sibSim, m.coefSib, a)); c != 0 {
				return c < 0
			}
			if c := cmpFloat(cached(parentSim, m.coefParent, b), cached(parentSim, m.coefParent, a)); c != 0 {
				return c < 0
			}
		}
		if c := cmpFloat(cached(posSim, m.coefPosInParent, a), cached(posSim, m.coefPosInParent, b)); c != 0 {
			return c < 0
		}
		return m.deltaPos(a) < m.deltaPos(b)
	})
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (m *subtreeMatcher) parents(l [2]int) (int, int) {
	return m.src.Parent(l[0]), m.dst.Parent(l[1])
}

func (m *subtreeMatcher) sameParents(a, b [2]int) bool {
	aps, apd := m.parents(a)
	bps, bpd := m.parents(b)
	return aps == bps && apd == bpd
}

// coefSib is the dice similarity of the parents' already-mapped descendants.
func (m *subtreeMatcher) coefSib(l [2]int) float64 {
	ps, pd := m.parents(l)
	sLo, sHi := m.src.DescendantsRange(ps)
	dLo, dHi := m.dst.DescendantsRange(pd)
	return similarityRange(m.mappings, sLo, sHi, dLo, dHi)
}

// coefParent is the LCS ratio of the two ancestor chains, compared by kind
// and label.
func (m *subtreeMatcher) coefParent(l [2]int) float64 {
	s1 := m.src.Parents(l[0])
	s2 := m.dst.Parents(l[1])
	if len(s1)+len(s2) == 0 {
		return 0
	}

	common := longestCommonSubsequence(s1, s2, func(a, b int) bool {
		sr := m.src.Store().Resolve(m.src.Original(a))
		dr := m.dst.Store().Resolve(m.dst.Original(b))
		return sr.Kind() == dr.Kind() && sr.Label() == dr.Label()
	})
	return 2 * float64(len(common)) / float64(len(s1)+len(s2))
}

// coefPosInParent is the euclidean distance of the relative positions along
// both ancestor chains; lower is better.
func (m *subtreeMatcher) coefPosInParent(l [2]int) float64 {
	srcs := m.relativePositions(m.src, l[0])
	dsts := m.relativePositions(m.dst, l[1])

	sum := 0.0
	for i := 0; i < len(srcs) && i < len(dsts); i++ {
		d := srcs[i] - dsts[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (m *subtreeMatcher) relativePositions(view View, i int) []float64 {
	var out []float64
	for x := i; view.HasParent(x); x = view.Parent(x) {
		p := view.Parent(x)
		out = append(out, float64(view.PositionInParent(x))/float64(len(view.Children(p))))
	}
	return out
}

func (m *subtreeMatcher) deltaPos(l [2]int) int {
	d := l[0] - l[1]
	if d < 0 {
		return -d
	}
	return d
}

// isomorphic reports whether the two subtrees are equal in kinds, labels and
// shape. Interning makes identical subtrees share an id, so the structural
// recursion only runs on the cold path.
func (m *subtreeMatcher) isomorphic(s, d int) bool {
	return m.isomorphicAux(m.src.Original(s), m.dst.Original(d), true)
}

func (m *subtreeMatcher) isomorphicAux(src, dst store.NodeId, checkHash bool) bool {
	if src == dst {
		return true
	}

	st := m.src.Store()
	sr := st.Resolve(src)
	dr := st.Resolve(dst)

	if checkHash && sr.Hash(store.HashLabel) != dr.Hash(store.HashLabel) {
		return false
	}
	if sr.Kind() != dr.Kind() || sr.Label() != dr.Label() {
		return false
	}
	if sr.ChildCount() != dr.ChildCount() {
		return false
	}
	for i := 0; i < sr.ChildCount(); i++ {
		if !m.isomorphicAux(sr.Child(i), dr.Child(i), false) {
			return false
		}
	}
	return true
}
