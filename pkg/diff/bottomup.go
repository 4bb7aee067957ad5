package diff

import (
	"time"

	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/store/kinds"
)

// bottomUpMatcher is the phase-2 similarity matcher: it maps internal nodes
// whose subtrees are not isomorphic but whose descendants are partly
// matched, then recovers leaf and renamed-node mappings under every fresh
// link with an optimal Zhang-Shasha pass.
type bottomUpMatcher struct {
	src, dst *decomp.Complete
	mappings *Mapping
	cfg      *Config
	stats    *Stats
	bud      *budget
}

// matchBottomUp runs phase 2, filling mappings. On a tripped budget it
// returns ErrTimeout or ErrMaxComparisons; the mapping keeps the links made
// so far.
func matchBottomUp(src, dst *decomp.Complete, mappings *Mapping, cfg *Config, stats *Stats, bud *budget) error {
	mappings.Topit(src.Len(), dst.Len())

	m := &bottomUpMatcher{src: src, dst: dst, mappings: mappings, cfg: cfg, stats: stats, bud: bud}

	start := time.Now()
	err := m.execute()
	stats.BottomUpPhase += time.Since(start)
	return err
}

func (m *bottomUpMatcher) execute() error {
	// The roots anchor the whole script; give them first refusal on each
	// other before scanning candidates.
	rs, rd := m.src.Root(), m.dst.Root()
	if !m.mappings.IsSrc(rs) && !m.mappings.IsDst(rd) && m.kindOf(m.src, rs) == m.kindOf(m.dst, rd) {
		m.link(rs, rd)
	}

	switch {
	case m.cfg.StatementLevel:
		return m.executeStatementLevel()
	case m.cfg.TypeGrouping:
		return m.executeTypeGrouping()
	default:
		return m.executeNaive()
	}
}

func (m *bottomUpMatcher) kindOf(v *decomp.Complete, i int) kinds.Kind {
	return v.Store().Resolve(v.Original(i)).Kind()
}

// link records the pair and runs the bounded recovery pass under it.
func (m *bottomUpMatcher) link(s, d int) {
	m.mappings.Link(s, d)
	m.stats.SuccessfulMatches++

	maxSize := m.cfg.MaxRecoverySize
	if maxSize <= 0 {
		return
	}
	if m.src.DescendantCount(s)+1 > maxSize || m.dst.DescendantCount(d)+1 > maxSize {
		return
	}

	for _, pair := range zsMatch(m.src, s, m.dst, d) {
		a, b := pair[0], pair[1]
		if !m.mappings.IsSrc(a) && !m.mappings.IsDst(b) {
			m.mappings.Link(a, b)
		}
	}
}

// isMappingAllowed requires both ends unmapped and of the same kind.
func (m *bottomUpMatcher) isMappingAllowed(s, d int) bool {
	if m.mappings.IsSrc(s) || m.mappings.IsDst(d) {
		return false
	}
	return m.kindOf(m.src, s) == m.kindOf(m.dst, d)
}

func (m *bottomUpMatcher) similarity(s, d int) float64 {
	start := time.Now()
	sLo, sHi := m.src.DescendantsRange(s)
	dLo, dHi := m.dst.DescendantsRange(d)
	sim := similarityRange(m.mappings, sLo, sHi, dLo, dHi)
	m.stats.SimilarityTime += time.Since(start)
	return sim
}

func (m *bottomUpMatcher) threshold(leaves int) float64 {
	if leaves > m.cfg.MaxLeaves {
		return m.cfg.SimThresholdLarge
	}
	return m.cfg.SimThresholdSmall
}

// executeStatementLevel considers statements and the internal nodes outside
// any statement, iterating a custom post-order that skips bodies below
// statements.
func (m *bottomUpMatcher) executeStatementLevel() error {
	srcNodes, leafCounts := collectStatementLevel(m.src)
	dstNodes, _ := collectStatementLevel(m.dst)

	for _, s := range srcNodes {
		threshold := m.threshold(leafCounts[s])

		for _, d := range dstNodes {
			if !m.isMappingAllowed(s, d) {
				continue
			}

			m.stats.TotalComparisons++
			if err := m.bud.tick(); err != nil {
				return err
			}

			if m.similarity(s, d) >= threshold {
				m.link(s, d)
				break
			}
		}
	}
	return nil
}

// collectStatementLevel walks the truncated tree whose leaves are the
// statements (and any real leaves above them), returning the internal nodes
// in post-order plus the truncated leaf count per node.
func collectStatementLevel(v *decomp.Complete) (inner []int, leafCounts map[int]int) {
	leafCounts = make(map[int]int)

	var walk func(i int) int
	walk = func(i int) int {
		cs := v.Children(i)
		kind := v.Store().Resolve(v.Original(i)).Kind()

		if len(cs) == 0 {
			leafCounts[i] = 1
			return 1
		}
		if kind.IsStatement() {
			// Statements are candidates but their bodies are not.
			inner = append(inner, i)
			leafCounts[i] = 1
			return 1
		}

		count := 0
		for _, c := range cs {
			count += walk(c)
		}
		inner = append(inner, i)
		leafCounts[i] = count
		return count
	}
	walk(v.Root())
	return
}

// executeTypeGrouping buckets unmapped internal nodes by kind and only
// compares within a bucket.
func (m *bottomUpMatcher) executeTypeGrouping() error {
	leafCounts := m.leafCounts()

	srcByKind := map[kinds.Kind][]int{}
	dstByKind := map[kinds.Kind][]int{}
	for s := 0; s < m.src.Len(); s++ {
		if !m.mappings.IsSrc(s) && len(m.src.Children(s)) > 0 {
			k := m.kindOf(m.src, s)
			srcByKind[k] = append(srcByKind[k], s)
		}
	}
	for d := 0; d < m.dst.Len(); d++ {
		if !m.mappings.IsDst(d) && len(m.dst.Children(d)) > 0 {
			k := m.kindOf(m.dst, d)
			dstByKind[k] = append(dstByKind[k], d)
		}
	}

	for kind, srcNodes := range srcByKind {
		dstNodes, ok := dstByKind[kind]
		if !ok {
			continue
		}
		for _, s := range srcNodes {
			if m.mappings.IsSrc(s) {
				continue
			}
			leaves, ok := leafCounts[s]
			if !ok {
				// Without the precomputation, recount per source node.
				lo, _ := m.src.DescendantsRange(s)
				for i := lo; i < s; i++ {
					if len(m.src.Children(i)) == 0 {
						leaves++
					}
				}
			}
			threshold := m.threshold(leaves)

			for _, d := range dstNodes {
				if m.mappings.IsDst(d) {
					continue
				}

				m.stats.TotalComparisons++
				if err := m.bud.tick(); err != nil {
					return err
				}

				if m.similarity(s, d) >= threshold {
					m.link(s, d)
					break
				}
			}
		}
	}
	return nil
}

// leafCounts is the one-pass leaf-count precomputation over the full src
// tree; post-order means children are summed before their parents.
func (m *bottomUpMatcher) leafCounts() map[int]int {
	counts := make(map[int]int, m.src.Len())
	if !m.cfg.LeafCountPrecomputation {
		return counts
	}
	for s := 0; s < m.src.Len(); s++ {
		cs := m.src.Children(s)
		if len(cs) == 0 {
			counts[s] = 1
			continue
		}
		sum := 0
		for _, c := range cs {
			sum += counts[c]
		}
		counts[s] = sum
	}
	return counts
}

// executeNaive compares every unmapped internal pair, recounting leaves per
// source node.
func (m *bottomUpMatcher) executeNaive() error {
	for s := 0; s < m.src.Len(); s++ {
		if len(m.src.Children(s)) == 0 {
			continue
		}

		leaves := 0
		lo, _ := m.src.DescendantsRange(s)
		for i := lo; i < s; i++ {
			if len(m.src.Children(i)) == 0 {
				leaves++
			}
		}
		threshold := m.threshold(leaves)

		for d := 0; d < m.dst.Len(); d++ {
			if len(m.dst.Children(d)) == 0 || !m.isMappingAllowed(s, d) {
				continue
			}

			m.stats.TotalComparisons++
			if err := m.bud.tick(); err != nil {
				return err
			}

			if m.similarity(s, d) >= threshold {
				m.link(s, d)
				break
			}
		}
	}
	return nil
}
