package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// ErrSessionNotFound is returned by SessionStore.Load for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Save(ctx context.Context, snapshot models.SessionSnapshot) error
	Load(ctx context.Context, id string) (models.SessionSnapshot, error)
	Delete(ctx context.Context, id string) error
}
