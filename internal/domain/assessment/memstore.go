package assessment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository holds records in process memory. Suitable for development and
// single-crew deployments where losing state on restart is acceptable.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*Record)}
}

func (m *MemoryRepository) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; ok {
		return fmt.Errorf("%w: %s already exists", ErrConflict, r.ID)
	}
	r.Version = 1
	m.records[r.ID] = r.clone()
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != r.Version {
		return fmt.Errorf("%w: %s at version %d, have %d", ErrConflict, r.ID, cur.Version, r.Version)
	}
	r.Version++
	m.records[r.ID] = r.clone()
	return nil
}

func (m *MemoryRepository) List(_ context.Context, limit, offset int) ([]*Record, int, error) {
	return m.page(func(*Record) bool { return true }, limit, offset)
}

func (m *MemoryRepository) ListBySubject(_ context.Context, subjectID string, limit, offset int) ([]*Record, int, error) {
	return m.page(func(r *Record) bool { return r.SubjectID == subjectID }, limit, offset)
}

// page returns matching records newest first.
func (m *MemoryRepository) page(match func(*Record) bool, limit, offset int) ([]*Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Record
	for _, r := range m.records {
		if match(r) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []*Record{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := make([]*Record, 0, end-offset)
	for _, r := range all[offset:end] {
		items = append(items, r.clone())
	}
	return items, total, nil
}
