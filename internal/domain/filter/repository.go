package filter

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store is the shared, process-wide filter store. Readers take snapshots with
// List; the interaction controller and filter-editing endpoints Append.
type Store interface {
	List(ctx context.Context) (FilterSet, error)
	Append(ctx context.Context, f Filter) error
	SetTimeRange(ctx context.Context, r TimeRange) error
	Clear(ctx context.Context) error
}

// MemoryStore is a Store guarded by a single-writer/multi-reader mutex.
type MemoryStore struct {
	mu  sync.RWMutex
	set FilterSet
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) List(_ context.Context) (FilterSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Clone(), nil
}

func (m *MemoryStore) Append(_ context.Context, f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	m.mu.Lock()
	m.set.Filters = append(m.set.Filters, f)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SetTimeRange(_ context.Context, r TimeRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.set.Time = &r
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.set = FilterSet{}
	m.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)

//Personal.AI order the ending
