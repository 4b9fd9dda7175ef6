// Package ids produces identifiers for new universities, subjects and items.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out identifiers that are never reused
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence generates predictable ids ("<prefix>-1", "<prefix>-2", ...)
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.next)
}

// Valid reports whether id is a full UUID
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
