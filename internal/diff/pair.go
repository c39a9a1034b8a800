// Package diff computes the ordered migration steps that transform one
// schema snapshot into another.
//
// The entry point is CalculateSteps, which pairs the two snapshots'
// objects, classifies every matched column's changes, asks the dialect
// which matched tables must be rebuilt from scratch, and emits a
// deterministic, dependency-ordered step sequence. The whole computation
// is pure: no I/O, no errors, same inputs always produce the same steps.
//
// Usage:
//
//	steps := diff.CalculateSteps(diff.Pair[*schema.Snapshot]{
//	    Previous: current,
//	    Next:     target,
//	}, postgres.NewPolicy())
package diff

// Pair holds the previous and next versions of one diffed object. The
// previous side always refers to the snapshot being migrated FROM and
// the next side to the snapshot being migrated TO.
type Pair[T any] struct {
	Previous T
	Next     T
}

// NewPair returns a Pair of the two values.
func NewPair[T any](previous, next T) Pair[T] {
	return Pair[T]{Previous: previous, Next: next}
}

// MapPair applies f to both sides of a pair.
func MapPair[T, U any](p Pair[T], f func(T) U) Pair[U] {
	return Pair[U]{Previous: f(p.Previous), Next: f(p.Next)}
}

// slot tracks one object during pairing, while we do not yet know
// whether both snapshots contain it. transpose is the single gate from
// candidate to diffable pair: only slots with both sides filled become
// a Pair.
type slot[T any] struct {
	previous    T
	next        T
	hasPrevious bool
	hasNext     bool
}

func (s *slot[T]) fillPrevious(v T) {
	s.previous = v
	s.hasPrevious = true
}

func (s *slot[T]) fillNext(v T) {
	s.next = v
	s.hasNext = true
}

// transpose returns the completed pair, or false when either side is
// still missing.
func (s slot[T]) transpose() (Pair[T], bool) {
	if !s.hasPrevious || !s.hasNext {
		var zero Pair[T]
		return zero, false
	}
	return Pair[T]{Previous: s.previous, Next: s.next}, true
}

// previousOnly returns the previous side when the object was dropped
// (present in the previous snapshot only).
func (s slot[T]) previousOnly() (T, bool) {
	if s.hasPrevious && !s.hasNext {
		return s.previous, true
	}
	var zero T
	return zero, false
}

// nextOnly returns the next side when the object was created (present
// in the next snapshot only).
func (s slot[T]) nextOnly() (T, bool) {
	if s.hasNext && !s.hasPrevious {
		return s.next, true
	}
	var zero T
	return zero, false
}
