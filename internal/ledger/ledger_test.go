package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

func fixedLedger(balance int64) *Ledger {
	l := NewLedger(balance)
	l.now = func() time.Time { return time.Date(2025, 6, 14, 15, 30, 0, 0, time.UTC) }
	return l
}

func TestApplyPurchase_ExactBalance(t *testing.T) {
	l := fixedLedger(500)
	require.True(t, l.CanAfford(500))

	tx, err := l.ApplyPurchase(models.PurchaseItem{Name: "Drip Irrigation Kit", Price: 500})

	require.NoError(t, err)
	assert.Equal(t, int64(0), l.Balance())
	assert.Equal(t, int64(-500), tx.Amount)
	assert.Equal(t, int64(0), tx.Balance)
	assert.Equal(t, "Drip Irrigation Kit purchase", tx.Description)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, []models.Transaction{tx}, l.Transactions())
}

func TestApplyPurchase_InsufficientFunds(t *testing.T) {
	l := fixedLedger(100)
	require.False(t, l.CanAfford(150))

	_, err := l.ApplyPurchase(models.PurchaseItem{Name: "Hybrid Seeds", Price: 150})

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(100), l.Balance())
	assert.Empty(t, l.Transactions())
}

func TestApplyPurchase_PrependsAndKeepsRunningBalance(t *testing.T) {
	l := fixedLedger(1000)

	_, err := l.ApplyPurchase(models.PurchaseItem{Name: "A", Price: 200})
	require.NoError(t, err)
	_, err = l.Credit("Funding disbursement", 300)
	require.NoError(t, err)
	_, err = l.ApplyPurchase(models.PurchaseItem{Name: "B", Price: 50})
	require.NoError(t, err)

	txs := l.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "B purchase", txs[0].Description)
	assert.Equal(t, int64(1050), txs[0].Balance)
	assert.Equal(t, int64(1100), txs[1].Balance)
	assert.Equal(t, int64(800), txs[2].Balance)
	assert.NoError(t, l.Verify())
}

func TestApplyPurchase_RejectsNonPositivePrice(t *testing.T) {
	l := fixedLedger(100)
	_, err := l.ApplyPurchase(models.PurchaseItem{Name: "Free", Price: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Credit("nothing", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApplyPurchase_ConcurrentNeverOverdraws(t *testing.T) {
	l := NewLedger(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ApplyPurchase(models.PurchaseItem{Name: "Seed pack", Price: 30})
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000-33*30), l.Balance())
	assert.Len(t, l.Transactions(), 33)
	assert.NoError(t, l.Verify())
}

func TestRestore_KeepsInvariant(t *testing.T) {
	l := fixedLedger(400)
	_, _ = l.ApplyPurchase(models.PurchaseItem{Name: "A", Price: 100})
	_, _ = l.ApplyPurchase(models.PurchaseItem{Name: "B", Price: 50})
	balance, txs := l.Snapshot()

	restored := Restore(balance, txs)

	assert.Equal(t, int64(250), restored.Balance())
	assert.NoError(t, restored.Verify())
	_, err := restored.ApplyPurchase(models.PurchaseItem{Name: "C", Price: 250})
	assert.NoError(t, err)
	assert.NoError(t, restored.Verify())
}
