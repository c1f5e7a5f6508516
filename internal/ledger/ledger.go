package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient tokens to complete this purchase")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Ledger holds a farmer's token balance and the transaction history that led to it.
// Transactions are kept most recent first.
type Ledger struct {
	mu           sync.Mutex
	initial      int64
	balance      int64
	transactions []models.Transaction
	now          func() time.Time
}

// NewLedger creates a ledger starting at the given balance.
func NewLedger(initialBalance int64) *Ledger {
	return &Ledger{
		initial: initialBalance,
		balance: initialBalance,
		now:     time.Now,
	}
}

// Restore rebuilds a ledger from a stored balance and history (most recent first).
func Restore(balance int64, transactions []models.Transaction) *Ledger {
	l := NewLedger(balance)
	l.transactions = append([]models.Transaction(nil), transactions...)
	// the initial balance is whatever was there before the oldest transaction
	var sum int64
	for _, t := range transactions {
		sum += t.Amount
	}
	l.initial = balance - sum
	return l
}

// ApplyPurchase debits item.Price from the balance and records the purchase.
// When the balance does not cover the price nothing changes.
func (l *Ledger) ApplyPurchase(item models.PurchaseItem) (models.Transaction, error) {
	if item.Price <= 0 {
		return models.Transaction{}, fmt.Errorf("purchase %q: %w", item.Name, ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance < item.Price {
		return models.Transaction{}, ErrInsufficientFunds
	}
	return l.apply(item.Name+" purchase", -item.Price), nil
}

// Credit records a token disbursement.
func (l *Ledger) Credit(description string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.apply(strings.TrimSpace(description), amount), nil
}

func (l *Ledger) apply(description string, amount int64) models.Transaction {
	l.balance += amount
	tx := models.Transaction{
		Date:        truncateDay(l.now()),
		Description: description,
		Amount:      amount,
		Balance:     l.balance,
	}
	l.transactions = append([]models.Transaction{tx}, l.transactions...)
	return tx
}

// CanAfford reports whether the current balance covers price.
func (l *Ledger) CanAfford(price int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance >= price
}

func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Transactions returns a copy of the history, most recent first.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]models.Transaction, len(l.transactions))
	copy(copied, l.transactions)
	return copied
}

// Snapshot returns the balance and history under a single lock.
func (l *Ledger) Snapshot() (int64, []models.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]models.Transaction, len(l.transactions))
	copy(copied, l.transactions)
	return l.balance, copied
}

// Verify checks that every transaction's balance equals the running sum of
// amounts from the initial balance.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	running := l.initial
	for i := len(l.transactions) - 1; i >= 0; i-- {
		t := l.transactions[i]
		running += t.Amount
		if t.Balance != running {
			return fmt.Errorf("transaction %d (%s): balance %d, expected %d", len(l.transactions)-i, t.Description, t.Balance, running)
		}
	}
	if running != l.balance {
		return fmt.Errorf("balance %d does not match history total %d", l.balance, running)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
