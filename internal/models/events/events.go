package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePurchaseCompleted       = "purchase_completed"
	TypeFundingRequestSubmitted = "funding_request_submitted"
	TypeFarmUpdatePublished     = "farm_update_published"
)

// Envelope wraps every event published by the portal.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type PurchaseCompleted struct {
	Item    string `json:"item"`
	Price   int64  `json:"price"`
	Balance int64  `json:"balance"`
}

type FundingRequestSubmitted struct {
	Amount      int64  `json:"amount"`
	Purpose     string `json:"purpose"`
	Description string `json:"description"`
}

type FarmUpdatePublished struct {
	UpdateID int    `json:"update_id"`
	Day      int    `json:"day"`
	Title    string `json:"title"`
	HasImage bool   `json:"has_image"`
}

// New stamps payload with a fresh event ID and the current time.
func New(sessionID, eventType string, payload any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
