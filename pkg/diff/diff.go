// Package diff computes edit scripts between two interned trees.
//
// The engine is the classic three-phase shape: a greedy top-down pass maps
// maximal isomorphic subtrees in bulk, a bottom-up pass maps containers by
// descendant similarity (recovering leaf and renamed-node mappings with a
// bounded Zhang-Shasha pass), and a script generator walks the destination
// tree breadth-first over a mutable mid copy of the source, emitting
// Insert/Delete/Move/Update actions with paths that stay applicable while
// the tree evolves.
//
// A diff session is single-threaded and CPU-bound; it borrows the store
// immutably, so any number of sessions may run concurrently over one store.
// Callers needing cancellation set the [Config] deadline or comparison
// budget; a tripped budget surfaces as an error alongside the partial
// mapping and actions.
package diff

import (
	"time"

	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/store"
)

// Result is the outcome of one diff session.
type Result struct {
	// Mapping pairs src and dst post-order indices.
	Mapping *Mapping
	// Actions is the edit script transforming src into dst. Empty actions
	// with a nil Err is the valid "no difference" outcome.
	Actions []Action
	// Stats carries the session counters.
	Stats Stats
	// Err is nil, or one of ErrTimeout, ErrMaxComparisons and
	// ErrKindMismatch; Mapping and Actions then hold the partial result.
	Err error
}

// Diff computes the mapping and edit script turning src into dst.
func Diff(st *store.Store, src, dst store.NodeId, cfg Config) Result {
	start := time.Now()
	res := diff(st, src, dst, &cfg)
	res.Stats.TotalTime = time.Since(start)
	return res
}

func diff(st *store.Store, src, dst store.NodeId, cfg *Config) Result {
	if cfg.MinHeight < 1 {
		cfg.MinHeight = 1
	}

	// Interning makes tree identity an id comparison; identical trees
	// short-circuit to the identity mapping and an empty script.
	if src == dst {
		n := int(st.Resolve(src).Size())
		m := NewMapping()
		m.Topit(n, n)
		for i := 0; i < n; i++ {
			m.Link(i, i)
		}
		return Result{Mapping: m}
	}

	var res Result
	bud := newBudget(cfg)

	// Phase 1 runs on lazy views: the isomorphism frontier rarely reaches
	// the bottom of tall trees.
	lazySrc := decomp.NewLazy(st, src)
	lazyDst := decomp.NewLazy(st, dst)

	m := NewMapping()
	phase := time.Now()
	matchGreedySubtrees(lazySrc, lazyDst, m, cfg.MinHeight)
	res.Stats.SubtreePhase = time.Since(phase)
	debug.Log(nil, "diff", "subtree phase mapped %d pairs", m.Len())

	srcArena := lazySrc.Complete()
	dstArena := lazyDst.Complete()

	if err := matchBottomUp(srcArena, dstArena, m, cfg, &res.Stats, bud); err != nil {
		res.Mapping = m
		res.Err = err
		return res
	}
	debug.Log(nil, "diff", "bottom-up phase mapped %d pairs", m.Len())

	phase = time.Now()
	actions, err := generateScript(st, srcArena, dstArena, m, bud)
	res.Stats.ScriptPhase = time.Since(phase)

	res.Mapping = m
	res.Actions = actions
	res.Err = err
	return res
}
