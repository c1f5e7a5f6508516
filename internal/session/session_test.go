package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/storage/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T, store interfaces.SessionStore) *Manager {
	t.Helper()
	catalog, err := market.Load("")
	require.NoError(t, err)
	return NewManager(Config{
		InitialBalance: 500,
		ToastDuration:  time.Minute,
		Catalog:        catalog,
		Store:          store,
		Logger:         zerolog.Nop(),
	})
}

// fundingBackend serves only the funding list; the rest of the backend is
// left nil and panics if a test reaches it.
type fundingBackend struct {
	interfaces.FarmBackend
	records []models.FundingRecord
}

func (b *fundingBackend) FundingRequests(context.Context) ([]models.FundingRecord, error) {
	return b.records, nil
}

func TestGetCreatesSessionForMalformedID(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Get(ctx, "not-a-uuid")
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), s.Ledger.Balance())

	again, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, again)
	require.NoError(t, m.Close(ctx))
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	a, err := m.Get(ctx, "")
	require.NoError(t, err)
	b, err := m.Get(ctx, "")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	_, err = a.Market.Select("Soil Testing Kit")
	require.NoError(t, err)
	_, err = a.Market.Confirm(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(410), a.Ledger.Balance())
	assert.Equal(t, int64(500), b.Ledger.Balance())
	toast, ok := a.Toast.Current()
	require.True(t, ok)
	assert.Equal(t, "Successfully purchased Soil Testing Kit for 90 tokens!", toast.Message)
	_, ok = b.Toast.Current()
	assert.False(t, ok)
	require.NoError(t, m.Close(ctx))
}

func TestCloseSavesAndRestores(t *testing.T) {
	store := memory.NewMemorySessionStore()
	ctx := context.Background()

	m := newTestManager(t, store)
	s, err := m.Get(ctx, "")
	require.NoError(t, err)
	_, err = s.Market.Select("Neem Pesticide Spray")
	require.NoError(t, err)
	_, err = s.Market.Confirm(ctx)
	require.NoError(t, err)
	s.Feed.Apply(models.FarmUpdate{Title: "Sowing done", Day: 1})
	id := s.ID
	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 1, store.Len())

	restarted := newTestManager(t, store)
	r, err := restarted.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(380), r.Ledger.Balance())
	require.Len(t, r.Ledger.Transactions(), 1)
	require.NoError(t, r.Ledger.Verify())
	assert.Equal(t, "Sowing done", r.Feed.Updates()[0].Title)

	// the next update continues the numbering
	u := r.Feed.Apply(models.FarmUpdate{Title: "Weeding", Day: 9})
	assert.Equal(t, 2, u.ID)
	require.NoError(t, restarted.Close(ctx))
}

type failingStore struct{ interfaces.SessionStore }

func (failingStore) Load(context.Context, string) (models.SessionSnapshot, error) {
	return models.SessionSnapshot{}, errors.New("connection refused")
}

func TestGetPropagatesStoreFailure(t *testing.T) {
	m := newTestManager(t, failingStore{})

	_, err := m.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Zero(t, m.Len())
}

func TestEvictDropsIdleSessions(t *testing.T) {
	store := memory.NewMemorySessionStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	old, err := m.Get(ctx, "")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	fresh, err := m.Get(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Evict(ctx, time.Hour))
	assert.Equal(t, 1, m.Len())
	_, err = store.Load(ctx, old.ID)
	require.NoError(t, err)

	again, err := m.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Same(t, fresh, again)
	require.NoError(t, m.Close(ctx))
}

func TestApprovedFundingCreditsWalletOnlyWhenEnabled(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		t.Run(fmt.Sprintf("credit=%t", enabled), func(t *testing.T) {
			ctx := context.Background()
			record := models.FundingRecord{AmountTokens: 250, Purpose: "seeds", Description: "Seeds for rabi", Status: models.FundingPending}
			backend := &fundingBackend{records: []models.FundingRecord{record}}
			m := newTestManager(t, nil)
			m.cfg.Backend = backend
			m.cfg.CreditApprovedFunding = enabled

			s, err := m.Get(ctx, "")
			require.NoError(t, err)
			require.NoError(t, s.FundingPage.LoadRequests(ctx))

			record.Status = models.FundingApproved
			backend.records = []models.FundingRecord{record}
			require.NoError(t, s.FundingPage.LoadRequests(ctx))

			if enabled {
				assert.Equal(t, int64(750), s.Ledger.Balance())
				assert.Len(t, s.Ledger.Transactions(), 1)
			} else {
				assert.Equal(t, int64(500), s.Ledger.Balance())
				assert.Empty(t, s.Ledger.Transactions())
			}
			require.NoError(t, m.Close(ctx))
		})
	}
}
