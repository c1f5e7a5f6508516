package controller

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
)

const (
	profileExpired     = "Session expired. Please login again."
	profileUnavailable = "Unable to load farmer details."
)

type DashboardViews struct {
	Profile render.Region
	Images  render.Region
	Cycle   render.Region
}

// DashboardStatus reports which panels failed to load.
type DashboardStatus struct {
	ProfileError string `json:"profile_error,omitempty"`
	ImagesError  string `json:"images_error,omitempty"`
	CycleError   string `json:"cycle_error,omitempty"`
}

// DashboardPage loads the farmer card, farm photos and the season panel.
type DashboardPage struct {
	deps  Deps
	Views DashboardViews
}

func NewDashboardPage(deps Deps) *DashboardPage {
	return &DashboardPage{deps: deps}
}

// Load fetches the three panels in parallel. A failing panel never blocks
// the others.
func (p *DashboardPage) Load(ctx context.Context) DashboardStatus {
	var (
		status DashboardStatus
		g      errgroup.Group
	)
	g.Go(func() error {
		status.ProfileError = p.loadProfile(ctx)
		return nil
	})
	g.Go(func() error {
		status.ImagesError = p.loadImages(ctx)
		return nil
	})
	g.Go(func() error {
		status.CycleError = p.loadCycle(ctx)
		return nil
	})
	_ = g.Wait()
	return status
}

func (p *DashboardPage) loadProfile(ctx context.Context) string {
	profile, err := p.deps.Backend.FarmerProfile(ctx)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("load farmer profile")
		msg := profileUnavailable
		if errors.Is(err, apiclient.ErrRejected) {
			msg = profileExpired
		}
		html, rerr := render.ErrorPanel(msg)
		if rerr := renderInto(&p.Views.Profile, html, rerr); rerr != nil {
			p.deps.Logger.Error().Err(rerr).Msg("render profile error")
		}
		return msg
	}
	html, err := render.Profile(profile)
	if err := renderInto(&p.Views.Profile, html, err); err != nil {
		p.deps.Logger.Error().Err(err).Msg("render profile")
		return profileUnavailable
	}
	return ""
}

// loadImages shows the empty state on any failure.
func (p *DashboardPage) loadImages(ctx context.Context) string {
	var msg string
	images, err := p.deps.Backend.FarmImages(ctx)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("load farm images")
		msg = err.Error()
		images = nil
	}
	html, err := render.Images(images)
	if err := renderInto(&p.Views.Images, html, err); err != nil {
		p.deps.Logger.Error().Err(err).Msg("render farm images")
		return err.Error()
	}
	return msg
}

// loadCycle leaves the panel as it was when the backend fails.
func (p *DashboardPage) loadCycle(ctx context.Context) string {
	cycle, err := p.deps.Backend.ActiveCycle(ctx)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("load active cycle")
		return err.Error()
	}
	html, err := render.Cycle(cycle)
	if err := renderInto(&p.Views.Cycle, html, err); err != nil {
		p.deps.Logger.Error().Err(err).Msg("render crop cycle")
		return err.Error()
	}
	return ""
}
