package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"
)

// Generator creates UUIDv4 identifiers.
type Generator struct{}

// NewID returns a UUIDv4 string.
func (Generator) NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return hex.EncodeToString(b[0:4]) + "-" +
		hex.EncodeToString(b[4:6]) + "-" +
		hex.EncodeToString(b[6:8]) + "-" +
		hex.EncodeToString(b[8:10]) + "-" +
		hex.EncodeToString(b[10:16])
}

// Sequence hands out monotonically increasing request ids. A result
// stamped with an id lower than the latest issued one is stale.
type Sequence struct {
	last atomic.Uint64
}

// Next returns the next id.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the most recently issued id.
func (s *Sequence) Current() uint64 {
	return s.last.Load()
}
