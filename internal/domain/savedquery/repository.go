package savedquery

import (
	"context"
	"sync"

	"github.com/turtacn/facetmap/pkg/errors"
)

// Store resolves selections against the saved queries it holds.
type Store interface {
	Resolve(ctx context.Context, sel Selection) ([]SubQuery, error)
	Save(ctx context.Context, q SubQuery) error
	List(ctx context.Context) ([]SubQuery, error)
}

// ResolveFrom applies sel to an ordered lookup. Unknown ids are skipped.
// ModeAll and an empty ModeQuery resolve to no sub-queries, meaning match-all.
func ResolveFrom(sel Selection, lookup func(id string) (SubQuery, bool)) ([]SubQuery, error) {
	switch sel.Mode {
	case ModeAll, "":
		return nil, nil
	case ModeQuery:
		q := SubQuery{ID: "adhoc", Query: sel.Query}
		if q.IsMatchAll() {
			return nil, nil
		}
		return []SubQuery{q}, nil
	case ModeSelected:
		out := make([]SubQuery, 0, len(sel.IDs))
		for _, id := range sel.IDs {
			if q, ok := lookup(id); ok {
				out = append(out, q)
			}
		}
		return out, nil
	default:
		return nil, errors.InvalidParam("unknown saved query mode").WithDetail(string(sel.Mode))
	}
}

// MemoryStore keeps saved queries in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]SubQuery
}

// NewMemoryStore returns a store seeded with qs.
func NewMemoryStore(qs ...SubQuery) *MemoryStore {
	m := &MemoryStore{byID: make(map[string]SubQuery)}
	for _, q := range qs {
		_ = m.Save(context.Background(), q)
	}
	return m
}

func (m *MemoryStore) Resolve(_ context.Context, sel Selection) ([]SubQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ResolveFrom(sel, func(id string) (SubQuery, bool) {
		q, ok := m.byID[id]
		return q, ok
	})
}

// Save inserts or replaces q. Replacing keeps the original position.
func (m *MemoryStore) Save(_ context.Context, q SubQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[q.ID]; !ok {
		m.order = append(m.order, q.ID)
	}
	m.byID[q.ID] = q
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]SubQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SubQuery, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)

//Personal.AI order the ending
