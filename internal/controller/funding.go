package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sheikh-saqib/farmer-portal/internal/ledger"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

const pendingRequestMessage = "You already have a pending request. Please wait for approval."

type FundingViews struct {
	Summary render.Region
	List    render.Region
}

// FundingPage shows the farmer's funding requests and the request modal.
type FundingPage struct {
	deps   Deps
	book   *ledger.FundingBook
	wallet *ledger.Ledger

	mu       sync.Mutex
	purposes validation.PurposeSelection
	open     bool
	submit   ActionGuard

	Views FundingViews
}

// NewFundingPage builds the page. Approved requests are paid into wallet;
// a nil wallet skips the disbursement.
func NewFundingPage(deps Deps, book *ledger.FundingBook, wallet *ledger.Ledger) *FundingPage {
	return &FundingPage{deps: deps, book: book, wallet: wallet}
}

// Load fetches the summary and the request list. Both are always attempted.
func (p *FundingPage) Load(ctx context.Context) error {
	errSummary := p.LoadSummary(ctx)
	errList := p.LoadRequests(ctx)
	return errors.Join(errSummary, errList)
}

// LoadSummary leaves the totals untouched when the backend fails.
func (p *FundingPage) LoadSummary(ctx context.Context) error {
	s, err := p.deps.Backend.FundingSummary(ctx)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("load funding summary")
		return err
	}
	p.book.SetSummary(s)
	html, err := render.FundingSummary(s)
	return renderInto(&p.Views.Summary, html, err)
}

// LoadRequests replaces the projection. A failed fetch shows the empty list.
func (p *FundingPage) LoadRequests(ctx context.Context) error {
	records, fetchErr := p.deps.Backend.FundingRequests(ctx)
	if fetchErr != nil {
		p.deps.Logger.Warn().Err(fetchErr).Msg("load funding requests")
		records = nil
	}
	before := p.book.Requests()
	p.book.Replace(records)
	if fetchErr == nil {
		p.disburse(ledger.Approved(before, p.book.Requests()))
	}
	if err := p.renderList(); err != nil {
		return err
	}
	return fetchErr
}

// disburse credits the wallet once for every request seen turning approved.
func (p *FundingPage) disburse(approved []models.FundingRequest) {
	if p.wallet == nil {
		return
	}
	for _, r := range approved {
		if _, err := p.wallet.Credit("Funding approved: "+r.Description, r.Amount); err != nil {
			p.deps.Logger.Warn().Err(err).Int64("amount", r.Amount).Msg("credit approved funding")
			continue
		}
		p.deps.notify(fmt.Sprintf("Funding request approved! %d tokens added to your wallet.", r.Amount), false)
	}
}

func (p *FundingPage) renderList() error {
	html, err := render.FundingList(p.book.Requests())
	return renderInto(&p.Views.List, html, err)
}

// Open starts a new request unless one is already pending.
func (p *FundingPage) Open() error {
	if p.book.HasPending() {
		p.deps.notify(pendingRequestMessage, true)
		return ErrPendingRequest
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purposes.Reset()
	p.open = true
	return nil
}

func (p *FundingPage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

func (p *FundingPage) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// TogglePurpose checks or unchecks a purpose box. A fourth box stays unchecked.
func (p *FundingPage) TogglePurpose(tag string, checked bool) ([]string, error) {
	p.mu.Lock()
	err := p.purposes.Toggle(tag, checked)
	selected := p.purposes.Selected()
	p.mu.Unlock()

	if err != nil {
		p.deps.notify(err.Error(), true)
	}
	return selected, err
}

func (p *FundingPage) SetCustomPurpose(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purposes.SetCustom(text)
}

// Purposes returns the checked boxes and whether the "other" text box shows.
func (p *FundingPage) Purposes() ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.purposes.Selected(), p.purposes.OtherSelected()
}

// Submit validates the modal and sends the request. When form.Purposes is
// nil the boxes checked on the page are used.
func (p *FundingPage) Submit(ctx context.Context, form validation.FundingForm) (models.FundingRequest, error) {
	if err := p.submit.Begin(); err != nil {
		return models.FundingRequest{}, err
	}
	defer p.submit.Finish()

	if form.Purposes == nil {
		p.mu.Lock()
		form.Purposes = p.purposes.Selected()
		if form.CustomPurpose == "" {
			form.CustomPurpose = p.purposes.Custom()
		}
		p.mu.Unlock()
	}

	req, err := validation.Funding(form)
	if err != nil {
		p.deps.notify(err.Error(), true)
		return models.FundingRequest{}, err
	}
	if p.book.HasPending() {
		p.deps.notify(pendingRequestMessage, true)
		return models.FundingRequest{}, ErrPendingRequest
	}

	if err := p.deps.Backend.CreateFundingRequest(ctx, req); err != nil {
		p.deps.Logger.Warn().Err(err).Msg("create funding request")
		p.deps.notify(userMessage(err, "Unable to submit funding request. Please try again."), true)
		return models.FundingRequest{}, err
	}

	p.book.Apply(req)
	local := p.book.Requests()
	p.mu.Lock()
	p.purposes.Reset()
	p.open = false
	p.mu.Unlock()

	p.deps.notify("Funding request submitted!", false)
	p.deps.publish(ctx, events.TypeFundingRequestSubmitted, events.FundingRequestSubmitted{
		Amount:      req.Amount,
		Purpose:     req.PurposeField(),
		Description: req.Description,
	})

	// the backend copy is authoritative; fall back to the local projection
	_ = p.LoadSummary(ctx)
	if err := p.LoadRequests(ctx); err != nil {
		p.book.Restore(local)
		_ = p.renderList()
	}
	return req, nil
}
