package diff

import "errors"

var (
	// ErrTimeout reports that the session deadline tripped. The result
	// carries the partial mapping and actions computed so far.
	ErrTimeout = errors.New("diff: deadline exceeded")

	// ErrMaxComparisons reports that the comparison budget tripped. The
	// result carries the partial mapping and actions computed so far.
	ErrMaxComparisons = errors.New("diff: comparison budget exceeded")

	// ErrKindMismatch reports that the script generator was asked to align
	// two mapped nodes of differing kinds. This indicates a matcher bug,
	// not bad data; the result carries the partial script.
	ErrKindMismatch = errors.New("diff: mapped nodes have differing kinds")
)
