package ledger

import (
	"sync"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// UpdateFeed is the list of farm updates published in this session, most recent first.
type UpdateFeed struct {
	mu      sync.Mutex
	updates []models.FarmUpdate
}

func NewUpdateFeed() *UpdateFeed {
	return &UpdateFeed{}
}

// Apply numbers the update and prepends it.
func (f *UpdateFeed) Apply(u models.FarmUpdate) models.FarmUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	u.ID = len(f.updates) + 1
	f.updates = append([]models.FarmUpdate{u}, f.updates...)
	return u
}

func (f *UpdateFeed) Restore(updates []models.FarmUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append([]models.FarmUpdate(nil), updates...)
}

func (f *UpdateFeed) Updates() []models.FarmUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make([]models.FarmUpdate, len(f.updates))
	copy(copied, f.updates)
	return copied
}
