// Package logsink publishes portal events to the structured log. It is the
// default sink when no broker is configured.
package logsink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
)

type Publisher struct {
	logger zerolog.Logger
}

func NewPublisher(logger zerolog.Logger) *Publisher {
	return &Publisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *Publisher) Publish(ctx context.Context, event events.Envelope) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("session_id", event.SessionID).
		Time("occurred_at", event.OccurredAt).
		Interface("payload", event.Payload).
		Msg("event published")
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
