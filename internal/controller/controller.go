// Package controller holds one controller per portal page. A controller owns
// its page state explicitly, validates input, makes at most one backend call
// per action and renders the result into its regions.
package controller

import (
	"context"
	"errors"
	"html/template"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
)

var (
	ErrBusy              = errors.New("a previous submission is still in progress")
	ErrPendingRequest    = errors.New("a funding request is already pending")
	ErrNoPendingPurchase = errors.New("no purchase selected")
	ErrUnknownItem       = errors.New("unknown marketplace item")
)

// Notifier shows a toast.
type Notifier interface {
	Notify(message string, isError bool)
}

// RequestState tracks one action's round-trip.
type RequestState int

const (
	Idle RequestState = iota
	InFlight
	Done
)

func (s RequestState) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// ActionGuard rejects a second submission of the same action while the first
// is in flight. Other actions are not affected.
type ActionGuard struct {
	mu    sync.Mutex
	state RequestState
}

func (g *ActionGuard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == InFlight {
		return ErrBusy
	}
	g.state = InFlight
	return nil
}

func (g *ActionGuard) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Done
}

func (g *ActionGuard) State() RequestState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Deps are shared by every controller of a session.
type Deps struct {
	SessionID string
	Backend   interfaces.FarmBackend
	Toast     Notifier
	Events    interfaces.EventPublisher
	Logger    zerolog.Logger
}

func (d Deps) publish(ctx context.Context, eventType string, payload any) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, events.New(d.SessionID, eventType, payload)); err != nil {
		d.Logger.Warn().Err(err).Str("event", eventType).Msg("publish event")
	}
}

func (d Deps) notify(msg string, isError bool) {
	if d.Toast != nil {
		d.Toast.Notify(msg, isError)
	}
}

func renderInto(region *render.Region, html template.HTML, err error) error {
	if err != nil {
		return err
	}
	region.Render(html)
	return nil
}

// userMessage is the text shown for a failed backend call.
func userMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == apiclient.Rejected && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
