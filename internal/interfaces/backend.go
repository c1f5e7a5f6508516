package interfaces

import (
	"context"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// FarmBackend is the set of backend endpoints the portal pages call.
type FarmBackend interface {
	PredictCrop(ctx context.Context, in models.CropInput) (string, error)
	PredictDisease(ctx context.Context, filename string, image []byte) (models.DiseasePrediction, error)
	FarmerProfile(ctx context.Context) (models.FarmerProfile, error)
	FarmImages(ctx context.Context) ([]string, error)
	// ActiveCycle returns nil when the farmer has no active season.
	ActiveCycle(ctx context.Context) (*models.CropCycle, error)
	CreateFundingRequest(ctx context.Context, req models.FundingRequest) error
	FundingSummary(ctx context.Context) (models.FundingSummary, error)
	FundingRequests(ctx context.Context) ([]models.FundingRecord, error)
}
