package diff

import "time"

// Config tunes the three matcher phases and the session budgets.
type Config struct {
	// MinHeight is the phase-1 cutoff: subtrees shorter than this are not
	// considered for bulk isomorphism matching. Smaller widens matches and
	// raises cost. Must be >= 1.
	MinHeight int

	// MaxLeaves splits small from large subtrees when picking the phase-2
	// similarity threshold.
	MaxLeaves int

	// SimThresholdSmall and SimThresholdLarge are the phase-2 similarity
	// cutoffs for the two leaf-count buckets.
	SimThresholdSmall float64
	SimThresholdLarge float64

	// TypeGrouping restricts phase-2 candidates to same-kind nodes via a
	// prebuilt kind index.
	TypeGrouping bool

	// StatementLevel iterates phase 2 with a custom post-order that stops at
	// statements: statements and the internal nodes outside any statement
	// are candidates, the bodies below statements are skipped.
	StatementLevel bool

	// LeafCountPrecomputation computes leaf counts in one post-order pass
	// so phase-2 threshold selection is O(1) per candidate.
	LeafCountPrecomputation bool

	// MaxRecoverySize bounds the subtree size on which the Zhang-Shasha
	// recovery pass runs after a phase-2 link. 0 disables recovery.
	MaxRecoverySize int

	// Deadline bounds the wall-clock time of phase 2 and the script
	// generator. 0 means no deadline.
	Deadline time.Duration

	// MaxComparisons bounds the number of budget ticks: one per phase-2 pair
	// comparison plus one per script-generator step. 0 means no bound.
	MaxComparisons uint64
}

// DefaultConfig returns the canonical configuration.
func DefaultConfig() Config {
	return Config{
		MinHeight:               2,
		MaxLeaves:               4,
		SimThresholdSmall:       0.4,
		SimThresholdLarge:       0.6,
		TypeGrouping:            true,
		StatementLevel:          true,
		LeafCountPrecomputation: true,
		MaxRecoverySize:         100,
	}
}

// budget is the caller-owned cancellation state, checked between inner loop
// iterations of phase 2 and the script generator.
type budget struct {
	deadline    time.Time
	maxCompares uint64
	compares    uint64
}

func newBudget(cfg *Config) *budget {
	b := &budget{maxCompares: cfg.MaxComparisons}
	if cfg.Deadline > 0 {
		b.deadline = time.Now().Add(cfg.Deadline)
	}
	return b
}

// tick accounts one comparison and reports whether a budget tripped. The
// deadline is only sampled every 64 ticks to keep the hot loops cheap.
func (b *budget) tick() error {
	b.compares++
	if b.maxCompares > 0 && b.compares > b.maxCompares {
		return ErrMaxComparisons
	}
	if !b.deadline.IsZero() && b.compares&63 == 0 && time.Now().After(b.deadline) {
		return ErrTimeout
	}
	return nil
}
