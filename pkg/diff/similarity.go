package diff

// simMeasure counts the overlap of two descendant ranges under a mapping.
// Both ranges are half-open over proper descendants, [lld(x), x); the ranges
// being contiguous makes the intersection a single scan of the mapping.
type simMeasure struct {
	common, left, right int
}

func measureRange(m *Mapping, sLo, sHi, dLo, dHi int) simMeasure {
	s := simMeasure{left: sHi - sLo, right: dHi - dLo}
	for i := sLo; i < sHi; i++ {
		if d := m.GetDst(i); d != none && d >= dLo && d < dHi {
			s.common++
		}
	}
	return s
}

// Dice is 2·|common| / (|src| + |dst|), the measure phase 2 thresholds on
// and phase 1 orders ambiguous candidates by.
func (s simMeasure) Dice() float64 {
	if s.left+s.right == 0 {
		return 0
	}
	return 2 * float64(s.common) / float64(s.left+s.right)
}

// Jaccard is |common| / |union|.
func (s simMeasure) Jaccard() float64 {
	union := s.left + s.right - s.common
	if union == 0 {
		return 0
	}
	return float64(s.common) / float64(union)
}

// similarityRange is the Chawathe similarity of two descendant ranges.
func similarityRange(m *Mapping, sLo, sHi, dLo, dHi int) float64 {
	return measureRange(m, sLo, sHi, dLo, dHi).Dice()
}
