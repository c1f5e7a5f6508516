package interfaces

import (
	"context"

	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}
