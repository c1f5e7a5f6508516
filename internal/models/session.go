package models

import "time"

// SessionSnapshot is the serialisable state of one portal session.
type SessionSnapshot struct {
	ID              string           `json:"id"`
	Balance         int64            `json:"balance"`
	Transactions    []Transaction    `json:"transactions"`
	Updates         []FarmUpdate     `json:"updates"`
	FundingRequests []FundingRequest `json:"funding_requests"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
