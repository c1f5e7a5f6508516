package controller

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/render"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

// CropPage is the crop recommender form.
type CropPage struct {
	deps    Deps
	predict ActionGuard

	Result render.Region
	Error  render.Region
}

func NewCropPage(deps Deps) *CropPage {
	return &CropPage{deps: deps}
}

// Recommend validates the inputs and asks the predictor for a crop. Missing
// inputs are reported without calling the backend. While a recommendation is
// in flight a second call returns ErrBusy and leaves both panels alone.
func (p *CropPage) Recommend(ctx context.Context, in models.CropInput) (string, error) {
	if err := p.predict.Begin(); err != nil {
		return "", err
	}
	defer p.predict.Finish()

	p.Clear()

	in, err := validation.CropInput(in)
	if err != nil {
		return "", p.fail(err.Error(), err)
	}

	crop, err := p.deps.Backend.PredictCrop(ctx, in)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("crop prediction")
		return "", p.fail(predictionMessage(err), err)
	}

	html, err := render.CropResult(crop)
	if err := renderInto(&p.Result, html, err); err != nil {
		return "", err
	}
	return crop, nil
}

// Clear hides both the result and the error panel.
func (p *CropPage) Clear() {
	p.Result.Render("")
	p.Error.Render("")
}

func (p *CropPage) fail(msg string, cause error) error {
	html, err := render.ErrorPanel(msg)
	if err := renderInto(&p.Error, html, err); err != nil {
		return err
	}
	return cause
}

// DiseasePage uploads a leaf photo to the disease classifier.
type DiseasePage struct {
	deps    Deps
	predict ActionGuard

	Result render.Region
}

func NewDiseasePage(deps Deps) *DiseasePage {
	return &DiseasePage{deps: deps}
}

func (p *DiseasePage) Predict(ctx context.Context, filename string, image []byte) (models.DiseasePrediction, error) {
	if len(image) == 0 {
		p.deps.notify(validation.ErrMissingFile.Error(), true)
		return models.DiseasePrediction{}, validation.ErrMissingFile
	}

	if err := p.predict.Begin(); err != nil {
		return models.DiseasePrediction{}, err
	}
	defer p.predict.Finish()

	pred, err := p.deps.Backend.PredictDisease(ctx, filename, image)
	if err != nil {
		p.deps.Logger.Warn().Err(err).Msg("disease prediction")
		html, rerr := render.ErrorPanel(predictionMessage(err))
		if rerr := renderInto(&p.Result, html, rerr); rerr != nil {
			return models.DiseasePrediction{}, rerr
		}
		return models.DiseasePrediction{}, err
	}

	html, err := render.Disease(pred)
	if err := renderInto(&p.Result, html, err); err != nil {
		return models.DiseasePrediction{}, err
	}
	return pred, nil
}

const predictorUnavailable = "Error: unable to reach the prediction service. Please try again."

// predictionMessage is what the page shows for a failed prediction. Only the
// backend's own rejection message is shown verbatim; transport detail stays
// in the log.
func predictionMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == apiclient.Rejected && apiErr.Message != "" {
		return apiErr.Message
	}
	return predictorUnavailable
}
