package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// MemorySessionStore keeps session snapshots in a map. It is safe for
// concurrent use and never hands out its own slices.
type MemorySessionStore struct {
	mu       sync.Mutex                        // protects sessions
	sessions map[string]models.SessionSnapshot // keyed by session ID
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.SessionSnapshot),
	}
}

// Save replaces the stored snapshot for snapshot.ID.
func (m *MemorySessionStore) Save(ctx context.Context, snapshot models.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[snapshot.ID] = cloneSnapshot(snapshot)
	return nil
}

func (m *MemorySessionStore) Load(ctx context.Context, id string) (models.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.SessionSnapshot{}, interfaces.ErrSessionNotFound
	}
	return cloneSnapshot(s), nil // copy so callers can't modify stored state
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func cloneSnapshot(s models.SessionSnapshot) models.SessionSnapshot {
	out := s
	out.Transactions = append([]models.Transaction(nil), s.Transactions...)
	out.Updates = append([]models.FarmUpdate(nil), s.Updates...)
	out.FundingRequests = make([]models.FundingRequest, len(s.FundingRequests))
	for i, r := range s.FundingRequests {
		r.Purposes = append([]string(nil), r.Purposes...)
		out.FundingRequests[i] = r
	}
	if s.FundingRequests == nil {
		out.FundingRequests = nil
	}
	return out
}

// Compile-time check: ensure MemorySessionStore implements SessionStore
var _ interfaces.SessionStore = (*MemorySessionStore)(nil)
