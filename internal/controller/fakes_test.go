package controller

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/models/events"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	crop        string
	cropErr     error
	disease     models.DiseasePrediction
	diseaseErr  error
	profile     models.FarmerProfile
	profileErr  error
	images      []string
	imagesErr   error
	cycle       *models.CropCycle
	cycleErr    error
	createErr   error
	created     []models.FundingRequest
	summary     models.FundingSummary
	summaryErr  error
	records     []models.FundingRecord
	recordsErr  error
	block       chan struct{} // when set, PredictCrop waits on it
	cropEntered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) PredictCrop(ctx context.Context, in models.CropInput) (string, error) {
	f.record("PredictCrop")
	if f.cropEntered != nil {
		f.cropEntered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.crop, f.cropErr
}

func (f *fakeBackend) PredictDisease(ctx context.Context, filename string, image []byte) (models.DiseasePrediction, error) {
	f.record("PredictDisease")
	return f.disease, f.diseaseErr
}

func (f *fakeBackend) FarmerProfile(ctx context.Context) (models.FarmerProfile, error) {
	f.record("FarmerProfile")
	return f.profile, f.profileErr
}

func (f *fakeBackend) FarmImages(ctx context.Context) ([]string, error) {
	f.record("FarmImages")
	return f.images, f.imagesErr
}

func (f *fakeBackend) ActiveCycle(ctx context.Context) (*models.CropCycle, error) {
	f.record("ActiveCycle")
	return f.cycle, f.cycleErr
}

func (f *fakeBackend) CreateFundingRequest(ctx context.Context, req models.FundingRequest) error {
	f.record("CreateFundingRequest")
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) FundingSummary(ctx context.Context) (models.FundingSummary, error) {
	f.record("FundingSummary")
	return f.summary, f.summaryErr
}

func (f *fakeBackend) FundingRequests(ctx context.Context) ([]models.FundingRecord, error) {
	f.record("FundingRequests")
	return f.records, f.recordsErr
}

var _ interfaces.FarmBackend = (*fakeBackend)(nil)

type toastRecorder struct {
	mu     sync.Mutex
	toasts []recordedToast
}

type recordedToast struct {
	Message string
	IsError bool
}

func (r *toastRecorder) Notify(message string, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, recordedToast{message, isError})
}

func (r *toastRecorder) Last() recordedToast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return recordedToast{}
	}
	return r.toasts[len(r.toasts)-1]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *eventRecorder) Publish(ctx context.Context, e events.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func testDeps(backend *fakeBackend) (Deps, *toastRecorder, *eventRecorder) {
	toasts := &toastRecorder{}
	evs := &eventRecorder{}
	return Deps{
		SessionID: "session-1",
		Backend:   backend,
		Toast:     toasts,
		Events:    evs,
		Logger:    zerolog.Nop(),
	}, toasts, evs
}
