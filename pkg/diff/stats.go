package diff

import "time"

// Stats records matcher observability counters for one diff session.
type Stats struct {
	// TotalComparisons counts phase-2 pair comparisons.
	TotalComparisons uint64
	// SuccessfulMatches counts phase-2 links.
	SuccessfulMatches int
	// SimilarityTime is the time spent computing similarities.
	SimilarityTime time.Duration

	// Per-phase wall-clock durations.
	SubtreePhase  time.Duration
	BottomUpPhase time.Duration
	ScriptPhase   time.Duration
	// TotalTime covers the whole session.
	TotalTime time.Duration
}
