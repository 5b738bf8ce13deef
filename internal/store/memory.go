// internal/store/memory.go
//
// In-memory registry of running session machines.
//
// Characteristics:
//   - Stores *session.Machine objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing IDs.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/robalobadob/anagram-server/internal/session"
)

// ErrNotFound is returned when no machine has the requested ID.
var ErrNotFound = errors.New("store: session not found")

// Store defines the registry interface for session machines.
type Store interface {
	// Save adds or replaces a machine under its ID.
	Save(ctx context.Context, m *session.Machine) error

	// Get retrieves a machine by ID.
	Get(ctx context.Context, id string) (*session.Machine, error)

	// Delete removes a machine. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error

	// IDs lists registered machine IDs in sorted order.
	IDs(ctx context.Context) ([]string, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                // guards machines map
	machines map[string]*session.Machine // keyed by Machine.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{machines: make(map[string]*session.Machine)}
}

func (m *memory) Save(ctx context.Context, sm *session.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines[sm.ID] = sm
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sm, ok := m.machines[id]; ok {
		return sm, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.machines, id)
	return nil
}

func (m *memory) IDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.machines))
	for id := range m.machines {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
