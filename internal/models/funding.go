package models

import (
	"encoding/json"
	"strings"
)

type FundingStatus string

const (
	FundingPending  FundingStatus = "pending"
	FundingApproved FundingStatus = "approved"
	FundingRejected FundingStatus = "rejected"
)

// PurposeOther is the purpose tag that requires a free-text description.
const PurposeOther = "other"

// MaxPurposes is the number of purpose tags a funding request may carry.
const MaxPurposes = 3

// FundingRequest is the client-side projection of a farmer's ask for tokens.
type FundingRequest struct {
	Amount        int64         `json:"amount"`
	Purposes      []string      `json:"purposes"`
	CustomPurpose string        `json:"custom_purpose,omitempty"`
	Description   string        `json:"description"`
	Status        FundingStatus `json:"status"`
}

// PurposeField encodes the purposes the way the funding backend stores them:
// tags joined by commas, with "other" expanded to "other:<custom text>".
func (r FundingRequest) PurposeField() string {
	parts := make([]string, 0, len(r.Purposes))
	for _, p := range r.Purposes {
		if p == PurposeOther {
			parts = append(parts, PurposeOther+":"+strings.TrimSpace(r.CustomPurpose))
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ",")
}

// FundingRecord is a funding request as listed by the backend.
type FundingRecord struct {
	AmountTokens int64         `json:"amount_tokens"`
	Purpose      string        `json:"purpose"`
	Description  string        `json:"description"`
	Status       FundingStatus `json:"status"`
}

// FundingSummary holds the totals shown above the funding list.
type FundingSummary struct {
	TotalRequested   int64 `json:"total_requested"`
	AvailableFunds   int64 `json:"available_funds"`
	AdditionalNeeded int64 `json:"additional_needed"`
}

func (r *FundingRecord) UnmarshalJSON(b []byte) error {
	type plain FundingRecord
	aux := struct {
		*plain
		AmountTokens json.RawMessage `json:"amount_tokens"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var err error
	r.AmountTokens, err = decodeInt("amount_tokens", aux.AmountTokens)
	return err
}

func (s *FundingSummary) UnmarshalJSON(b []byte) error {
	var aux struct {
		TotalRequested   json.RawMessage `json:"total_requested"`
		AvailableFunds   json.RawMessage `json:"available_funds"`
		AdditionalNeeded json.RawMessage `json:"additional_needed"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var out FundingSummary
	var err error
	if out.TotalRequested, err = decodeInt("total_requested", aux.TotalRequested); err != nil {
		return err
	}
	if out.AvailableFunds, err = decodeInt("available_funds", aux.AvailableFunds); err != nil {
		return err
	}
	if out.AdditionalNeeded, err = decodeInt("additional_needed", aux.AdditionalNeeded); err != nil {
		return err
	}
	*s = out
	return nil
}
