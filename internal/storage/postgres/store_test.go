package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// Runs against a real database only when FARMER_TEST_POSTGRES_DSN is set.
func openTestStore(t *testing.T) *PostgresSessionStore {
	t.Helper()
	dsn := os.Getenv("FARMER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FARMER_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresSessionStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	snap := models.SessionSnapshot{
		ID:      id,
		Balance: 380,
		Transactions: []models.Transaction{
			{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Description: "Neem Pesticide Spray purchase", Amount: -120, Balance: 380},
		},
		UpdatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, snap))

	snap.Balance = 290
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(290), got.Balance)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "Neem Pesticide Spray purchase", got.Transactions[0].Description)
}

func TestPostgresSessionStoreLoadUnknown(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}
