package controller

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/farmer-portal/internal/ledger"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

// UpdatesPage publishes farm updates for investors.
type UpdatesPage struct {
	deps   Deps
	feed   *ledger.UpdateFeed
	submit ActionGuard

	List render.Region
}

func NewUpdatesPage(deps Deps, feed *ledger.UpdateFeed) *UpdatesPage {
	return &UpdatesPage{deps: deps, feed: feed}
}

func (p *UpdatesPage) Submit(ctx context.Context, form validation.UpdateForm) (models.FarmUpdate, error) {
	if err := p.submit.Begin(); err != nil {
		return models.FarmUpdate{}, err
	}
	defer p.submit.Finish()

	u, err := validation.Update(form)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, validation.ErrMissingFields) {
			msg = "Please fill in all fields."
		}
		p.deps.notify(msg, true)
		return models.FarmUpdate{}, err
	}

	u = p.feed.Apply(u)
	if err := p.Render(); err != nil {
		return u, err
	}
	p.deps.notify("Farm update published successfully!", false)
	p.deps.publish(ctx, events.TypeFarmUpdatePublished, events.FarmUpdatePublished{
		UpdateID: u.ID,
		Day:      u.Day,
		Title:    u.Title,
		HasImage: u.Image != "",
	})
	return u, nil
}

func (p *UpdatesPage) Render() error {
	html, err := render.Updates(p.feed.Updates())
	return renderInto(&p.List, html, err)
}
