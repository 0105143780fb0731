package fairness

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

var ErrInvalidRange = errors.New("invalid_range")

// Randomizer produces uniform integers for dice rolls.
type Randomizer interface {
	UniformInt(min, max int) (int, error)
}

// CryptoRandomizer draws 32-bit values from a cryptographic source and maps
// them onto [min, max] with rejection sampling, so every face is equally likely.
type CryptoRandomizer struct {
	Source io.Reader
}

func NewCryptoRandomizer() *CryptoRandomizer {
	return &CryptoRandomizer{Source: rand.Reader}
}

func (r *CryptoRandomizer) UniformInt(min, max int) (int, error) {
	if max < min {
		return 0, ErrInvalidRange
	}
	span := uint64(max-min) + 1
	if span > 1<<32 {
		return 0, ErrInvalidRange
	}
	src := r.Source
	if src == nil {
		src = rand.Reader
	}
	// Values at or above limit would favour the low faces.
	limit := (1 << 32) - (1<<32)%span
	var buf [4]byte
	for {
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return 0, fmt.Errorf("read random value: %w", err)
		}
		v := uint64(binary.BigEndian.Uint32(buf[:]))
		if v < limit {
			return min + int(v%span), nil
		}
	}
}

// Sequence replays scripted values, mainly for tests and demos.
// Values outside the requested range are an error.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequence(values ...int) *Sequence {
	return &Sequence{values: append([]int(nil), values...)}
}

var ErrSequenceExhausted = errors.New("sequence_exhausted")

func (s *Sequence) UniformInt(min, max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0, ErrSequenceExhausted
	}
	v := s.values[s.next]
	s.next++
	if v < min || v > max {
		return 0, fmt.Errorf("scripted value %d outside [%d,%d]: %w", v, min, max, ErrInvalidRange)
	}
	return v, nil
}

// Push appends more scripted values.
func (s *Sequence) Push(values ...int) {
	s.mu.Lock()
	s.values = append(s.values, values...)
	s.mu.Unlock()
}
