// Package idgen provides pluggable id-generation strategies so that stores
// never reach for wall-clock or global randomness directly.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique ids with a human-readable prefix.
type Generator interface {
	NewID(prefix string) string
}

// UUID generates ids of the form "prefix-<uuid v4>".
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID(prefix string) string {
	if prefix == "" {
		return uuid.New().String()
	}
	return prefix + "-" + uuid.New().String()
}

// Sequence generates "prefix-1", "prefix-2", ... with an independent
// counter per prefix. Useful for deterministic tests.
type Sequence struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewSequence creates a Sequence starting at 1 for every prefix.
func NewSequence() *Sequence {
	return &Sequence{counters: make(map[string]int)}
}

// NewID implements Generator.
func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[prefix]++
	if prefix == "" {
		return fmt.Sprintf("%d", s.counters[prefix])
	}
	return fmt.Sprintf("%s-%d", prefix, s.counters[prefix])
}
