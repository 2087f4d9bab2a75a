package service

import "sync/atomic"

// Sequence hands out process-unique quiz identifiers. Concurrent requests
// always receive distinct values.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a sequence starting after seed.
func NewSequence(seed int64) *Sequence {
	s := &Sequence{}
	s.n.Store(seed)
	return s
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}
