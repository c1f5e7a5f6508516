// Package apiclient talks to the farm backend: the crop and disease predictors,
// the farmer dashboard endpoints and the funding service. Every call makes a
// single attempt; retrying is left to the farmer.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// Endpoints are the absolute URLs of the backend collaborators.
type Endpoints struct {
	CropPredict    string `mapstructure:"crop_predict" yaml:"crop_predict"`
	DiseasePredict string `mapstructure:"disease_predict" yaml:"disease_predict"`
	FarmerProfile  string `mapstructure:"farmer_profile" yaml:"farmer_profile"`
	FarmImages     string `mapstructure:"farm_images" yaml:"farm_images"`
	ActiveCycle    string `mapstructure:"active_cycle" yaml:"active_cycle"`
	FundingCreate  string `mapstructure:"funding_create" yaml:"funding_create"`
	FundingSummary string `mapstructure:"funding_summary" yaml:"funding_summary"`
	FundingList    string `mapstructure:"funding_list" yaml:"funding_list"`
}

const (
	epCropPredict    = "crop_predict"
	epDiseasePredict = "disease_predict"
	epFarmerProfile  = "farmer_profile"
	epFarmImages     = "farm_images"
	epActiveCycle    = "active_cycle"
	epFundingCreate  = "funding_create"
	epFundingSummary = "funding_summary"
	epFundingList    = "funding_list"
)

type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     zerolog.Logger
}

// New returns a client. A nil httpClient means a client without a timeout;
// callers bound calls through the context.
func New(endpoints Endpoints, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoints:  endpoints,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "apiclient").Logger(),
	}
}

type cookiesKey struct{}

// WithCookies attaches the farmer's browser cookies to every backend call made with ctx.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

type statusEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type cropEnvelope struct {
	Success    *bool  `json:"success"`
	Prediction string `json:"prediction"`
	Error      string `json:"error"`
}

type diseaseEnvelope struct {
	Prediction     map[string]float64 `json:"prediction"`
	NutrientStatus string             `json:"nutrient_status"`
	Error          string             `json:"error"`
}

// PredictCrop posts the soil and weather inputs and returns the recommended crop.
func (c *Client) PredictCrop(ctx context.Context, in models.CropInput) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", networkError(epCropPredict, "encode request", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.CropPredict, bytes.NewReader(payload))
	if err != nil {
		return "", networkError(epCropPredict, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(epCropPredict, req)
	if err != nil {
		return "", err
	}

	var env cropEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(status) {
			return "", rejected(epCropPredict, status, "Prediction failed")
		}
		return "", networkError(epCropPredict, "decode response", err)
	}
	if !isSuccess(status) || (env.Success != nil && !*env.Success) {
		msg := env.Error
		if msg == "" {
			msg = "Prediction failed"
		}
		return "", rejected(epCropPredict, status, msg)
	}
	if env.Success == nil || env.Prediction == "" {
		return "", networkError(epCropPredict, "unexpected response shape", nil)
	}
	return env.Prediction, nil
}

// PredictDisease uploads a leaf image as the multipart field "file".
func (c *Client) PredictDisease(ctx context.Context, filename string, image []byte) (models.DiseasePrediction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "encode request", err)
	}
	if _, err := part.Write(image); err != nil {
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "encode request", err)
	}
	if err := mw.Close(); err != nil {
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "encode request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.DiseasePredict, &buf)
	if err != nil {
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, body, err := c.do(epDiseasePredict, req)
	if err != nil {
		return models.DiseasePrediction{}, err
	}

	var env diseaseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(status) {
			return models.DiseasePrediction{}, rejected(epDiseasePredict, status, "")
		}
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "decode response", err)
	}
	if !isSuccess(status) || env.Error != "" {
		return models.DiseasePrediction{}, rejected(epDiseasePredict, status, env.Error)
	}
	if env.Prediction == nil {
		return models.DiseasePrediction{}, networkError(epDiseasePredict, "unexpected response shape", nil)
	}
	return models.DiseasePrediction{Prediction: env.Prediction, NutrientStatus: env.NutrientStatus}, nil
}

func (c *Client) FarmerProfile(ctx context.Context) (models.FarmerProfile, error) {
	var p models.FarmerProfile
	if err := c.getOK(ctx, epFarmerProfile, c.endpoints.FarmerProfile, &p); err != nil {
		return models.FarmerProfile{}, err
	}
	return p, nil
}

// FarmImages returns the farm photo URLs. An empty list is not an error.
func (c *Client) FarmImages(ctx context.Context) ([]string, error) {
	var imgs models.FarmImages
	if err := c.getOK(ctx, epFarmImages, c.endpoints.FarmImages, &imgs); err != nil {
		return nil, err
	}
	return imgs.Images, nil
}

// ActiveCycle returns nil, nil when the backend reports no active season.
func (c *Client) ActiveCycle(ctx context.Context) (*models.CropCycle, error) {
	env, err := c.get(ctx, epActiveCycle, c.endpoints.ActiveCycle)
	if err != nil {
		return nil, err
	}
	if isNull(env.Data) {
		return nil, nil
	}
	var cycle models.CropCycle
	if err := json.Unmarshal(env.Data, &cycle); err != nil {
		return nil, networkError(epActiveCycle, "decode data", err)
	}
	return &cycle, nil
}

// CreateFundingRequest submits the request as a multipart form.
func (c *Client) CreateFundingRequest(ctx context.Context, fr models.FundingRequest) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"amount", strconv.FormatInt(fr.Amount, 10)},
		{"purpose", fr.PurposeField()},
		{"description", fr.Description},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return networkError(epFundingCreate, "encode request", err)
		}
	}
	if err := mw.Close(); err != nil {
		return networkError(epFundingCreate, "encode request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.FundingCreate, &buf)
	if err != nil {
		return networkError(epFundingCreate, "build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, body, err := c.do(epFundingCreate, req)
	if err != nil {
		return err
	}
	_, err = decodeStatus(epFundingCreate, status, body)
	return err
}

func (c *Client) FundingSummary(ctx context.Context) (models.FundingSummary, error) {
	var s models.FundingSummary
	if err := c.getOK(ctx, epFundingSummary, c.endpoints.FundingSummary, &s); err != nil {
		return models.FundingSummary{}, err
	}
	return s, nil
}

func (c *Client) FundingRequests(ctx context.Context) ([]models.FundingRecord, error) {
	var list []models.FundingRecord
	if err := c.getOK(ctx, epFundingList, c.endpoints.FundingList, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// getOK fetches a {status:"OK", data:...} envelope and decodes data into out.
// An OK envelope without data is the backend declining to answer, typically
// for a session it no longer recognises, so it is reported as a rejection.
func (c *Client) getOK(ctx context.Context, name, url string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return networkError(name, "build request", err)
	}
	status, body, err := c.do(name, req)
	if err != nil {
		return err
	}
	env, err := decodeStatus(name, status, body)
	if err != nil {
		return err
	}
	if isNull(env.Data) {
		return rejected(name, status, noDataMessage)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return networkError(name, "decode data", err)
	}
	return nil
}

const noDataMessage = "No data returned"

// get fetches an envelope without requiring status "OK".
func (c *Client) get(ctx context.Context, name, url string) (statusEnvelope, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return statusEnvelope{}, networkError(name, "build request", err)
	}
	status, body, err := c.do(name, req)
	if err != nil {
		return statusEnvelope{}, err
	}
	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(status) {
			return statusEnvelope{}, rejected(name, status, "")
		}
		return statusEnvelope{}, networkError(name, "decode response", err)
	}
	if !isSuccess(status) {
		return statusEnvelope{}, rejected(name, status, env.Message)
	}
	return env, nil
}

func decodeStatus(name string, status int, body []byte) (statusEnvelope, error) {
	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if !isSuccess(status) {
			return statusEnvelope{}, rejected(name, status, "")
		}
		return statusEnvelope{}, networkError(name, "decode response", err)
	}
	if !isSuccess(status) || env.Status != "OK" {
		msg := env.Message
		if msg == "" && !isSuccess(status) {
			msg = httpStatusMessage(status)
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %q", env.Status)
		}
		return statusEnvelope{}, rejected(name, status, msg)
	}
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	if url == "" {
		return nil, fmt.Errorf("endpoint not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for _, ck := range cookiesFrom(ctx) {
		req.AddCookie(ck)
	}
	return req, nil
}

func (c *Client) do(name string, req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", name).Msg("backend request failed")
		return 0, nil, networkError(name, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", name).Msg("read backend response")
		return 0, nil, networkError(name, "read response", err)
	}

	c.logger.Debug().
		Str("endpoint", name).
		Str("method", req.Method).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")
	return resp.StatusCode, body, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

var _ interfaces.FarmBackend = (*Client)(nil)
