package ledger

import (
	"strings"
	"sync"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// FundingBook is the read-only projection of the farmer's funding requests
// plus the summary totals, both fetched from the funding backend.
type FundingBook struct {
	mu       sync.Mutex
	requests []models.FundingRequest
	summary  *models.FundingSummary
}

func NewFundingBook() *FundingBook {
	return &FundingBook{}
}

// Apply prepends a request submitted from this session.
func (b *FundingBook) Apply(req models.FundingRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append([]models.FundingRequest{req}, b.requests...)
}

// Replace installs the list returned by the backend.
func (b *FundingBook) Replace(records []models.FundingRecord) {
	reqs := make([]models.FundingRequest, 0, len(records))
	for _, r := range records {
		reqs = append(reqs, FromRecord(r))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = reqs
}

func (b *FundingBook) Restore(reqs []models.FundingRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append([]models.FundingRequest(nil), reqs...)
}

// SetSummary replaces the totals.
func (b *FundingBook) SetSummary(s models.FundingSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary = &s
}

// Summary returns the last totals fetched, if any.
func (b *FundingBook) Summary() (models.FundingSummary, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.summary == nil {
		return models.FundingSummary{}, false
	}
	return *b.summary, true
}

func (b *FundingBook) Requests() []models.FundingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	copied := make([]models.FundingRequest, len(b.requests))
	copy(copied, b.requests)
	return copied
}

// HasPending reports whether any projected request still awaits approval.
func (b *FundingBook) HasPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.Status == models.FundingPending {
			return true
		}
	}
	return false
}

// FromRecord decodes the comma-separated purpose field of a backend record.
func FromRecord(r models.FundingRecord) models.FundingRequest {
	req := models.FundingRequest{
		Amount:      r.AmountTokens,
		Description: r.Description,
		Status:      r.Status,
	}
	for _, p := range strings.Split(r.Purpose, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if custom, ok := strings.CutPrefix(p, models.PurposeOther+":"); ok {
			req.Purposes = append(req.Purposes, models.PurposeOther)
			req.CustomPurpose = custom
			continue
		}
		req.Purposes = append(req.Purposes, p)
	}
	return req
}

// Approved returns the requests of after that are approved and were pending
// in before. Requests carry no ID, so they are matched on amount, purposes
// and description, each earlier request at most once.
func Approved(before, after []models.FundingRequest) []models.FundingRequest {
	type key struct {
		amount      int64
		purpose     string
		description string
	}
	pending := make(map[key]int)
	for _, r := range before {
		if r.Status == models.FundingPending {
			pending[key{r.Amount, r.PurposeField(), r.Description}]++
		}
	}

	var out []models.FundingRequest
	for _, r := range after {
		if r.Status != models.FundingApproved {
			continue
		}
		k := key{r.Amount, r.PurposeField(), r.Description}
		if pending[k] == 0 {
			continue
		}
		pending[k]--
		out = append(out, r)
	}
	return out
}
