// Package session owns the page-state bundle of every browser session and
// persists it through a SessionStore.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/controller"
	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/ledger"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/notify"
)

// Session is one farmer's portal state.
type Session struct {
	ID string

	Ledger  *ledger.Ledger
	Funding *ledger.FundingBook
	Feed    *ledger.UpdateFeed
	Toast   *notify.Notifier

	Market      *controller.MarketPage
	FundingPage *controller.FundingPage
	Updates     *controller.UpdatesPage
	Crop        *controller.CropPage
	Disease     *controller.DiseasePage
	Dashboard   *controller.DashboardPage

	mu       sync.Mutex
	lastSeen time.Time
}

// Snapshot captures the state worth keeping across restarts. Toasts and
// rendered regions are transient and rebuilt on demand.
func (s *Session) Snapshot() models.SessionSnapshot {
	balance, txs := s.Ledger.Snapshot()
	return models.SessionSnapshot{
		ID:              s.ID,
		Balance:         balance,
		Transactions:    txs,
		Updates:         s.Feed.Updates(),
		FundingRequests: s.Funding.Requests(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) idleSince(t time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Sub(s.lastSeen)
}

// Config holds what every new session is built from.
type Config struct {
	InitialBalance int64
	// CreditApprovedFunding lets the funding page pay approved requests into
	// the session wallet.
	CreditApprovedFunding bool
	ToastDuration         time.Duration
	Catalog               *market.Catalog
	Backend               interfaces.FarmBackend
	Store                 interfaces.SessionStore
	Events                interfaces.EventPublisher
	Logger                zerolog.Logger
}

// Manager hands out sessions by ID, creating or restoring them as needed.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id. An empty or malformed id starts a new
// session with a fresh ID; a well-formed unknown id is restored from the
// store when possible and started empty otherwise.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.touch(m.now())
		return s, nil
	}

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have built it meanwhile
	if existing, ok := m.sessions[id]; ok {
		s.Toast.Close()
		existing.touch(m.now())
		return existing, nil
	}
	s.touch(m.now())
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	if m.cfg.Store == nil {
		return m.build(id, nil), nil
	}
	snap, err := m.cfg.Store.Load(ctx, id)
	if errors.Is(err, interfaces.ErrSessionNotFound) {
		return m.build(id, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	m.cfg.Logger.Debug().Str("session_id", id).Msg("session restored")
	return m.build(id, &snap), nil
}

func (m *Manager) build(id string, snap *models.SessionSnapshot) *Session {
	s := &Session{
		ID:      id,
		Ledger:  ledger.NewLedger(m.cfg.InitialBalance),
		Funding: ledger.NewFundingBook(),
		Feed:    ledger.NewUpdateFeed(),
		Toast:   notify.New(m.cfg.ToastDuration),
	}
	if snap != nil {
		s.Ledger = ledger.Restore(snap.Balance, snap.Transactions)
		s.Funding.Restore(snap.FundingRequests)
		s.Feed.Restore(snap.Updates)
	}

	deps := controller.Deps{
		SessionID: id,
		Backend:   m.cfg.Backend,
		Toast:     s.Toast,
		Events:    m.cfg.Events,
		Logger:    m.cfg.Logger.With().Str("session_id", id).Logger(),
	}
	s.Market = controller.NewMarketPage(deps, s.Ledger, m.cfg.Catalog)
	var wallet *ledger.Ledger
	if m.cfg.CreditApprovedFunding {
		wallet = s.Ledger
	}
	s.FundingPage = controller.NewFundingPage(deps, s.Funding, wallet)
	s.Updates = controller.NewUpdatesPage(deps, s.Feed)
	s.Crop = controller.NewCropPage(deps)
	s.Disease = controller.NewDiseasePage(deps)
	s.Dashboard = controller.NewDashboardPage(deps)
	return s
}

// Save persists the session. Without a store it is a no-op.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if m.cfg.Store == nil {
		return nil
	}
	if err := m.cfg.Store.Save(ctx, s.Snapshot()); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// Evict saves and forgets sessions idle for longer than maxIdle.
func (m *Manager) Evict(ctx context.Context, maxIdle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleSince(now) > maxIdle {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		if err := m.Save(ctx, s); err != nil {
			m.cfg.Logger.Warn().Err(err).Str("session_id", s.ID).Msg("save evicted session")
		}
		s.Toast.Close()
	}
	return len(idle)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close saves every live session and stops their toast timers.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range all {
		errs = append(errs, m.Save(ctx, s))
		s.Toast.Close()
	}
	return errors.Join(errs...)
}
