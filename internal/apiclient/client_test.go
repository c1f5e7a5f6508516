package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ep := Endpoints{
		CropPredict:    srv.URL + "/predict",
		DiseasePredict: srv.URL + "/disease/predict",
		FarmerProfile:  srv.URL + "/backend/get-farmer-data.php",
		FarmImages:     srv.URL + "/backend/farmer/get_farm_images.php",
		ActiveCycle:    srv.URL + "/backend/farmer/get_active_cycle.php",
		FundingCreate:  srv.URL + "/backend/funding/create_request.php",
		FundingSummary: srv.URL + "/backend/funding/summary.php",
		FundingList:    srv.URL + "/backend/funding/list_requests.php",
	}
	return New(ep, srv.Client(), zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cropInput() models.CropInput {
	return models.CropInput{N: "90", P: "42", K: "43", Temperature: "20.8", Humidity: "82", PH: "6.5", Rainfall: "202.9"}
}

func TestPredictCrop_SendsJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "6.5", got["ph"])
		assert.Equal(t, "90", got["N"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "prediction": "rice"})
	}))

	crop, err := c.PredictCrop(context.Background(), cropInput())

	require.NoError(t, err)
	assert.Equal(t, "rice", crop)
}

func TestPredictCrop_Rejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid value for ph: x"})
	}))

	_, err := c.PredictCrop(context.Background(), cropInput())

	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Invalid value for ph: x", err.Error())
}

func TestPredictCrop_ServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.PredictCrop(context.Background(), cropInput())

	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Prediction failed", err.Error())
}

func TestPredictCrop_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(Endpoints{CropPredict: url + "/predict"}, nil, zerolog.Nop())

	_, err := c.PredictCrop(context.Background(), cropInput())

	assert.ErrorIs(t, err, ErrNetwork)
}

func TestPredictDisease_Multipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "leaf.jpg", hdr.Filename)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		writeJSON(w, http.StatusOK, map[string]any{
			"prediction":      map[string]float64{"leaf_blight": 0.82, "healthy": 0.18},
			"nutrient_status": "Nitrogen deficient",
		})
	}))

	p, err := c.PredictDisease(context.Background(), "leaf.jpg", []byte("jpeg-bytes"))

	require.NoError(t, err)
	assert.InDelta(t, 0.82, p.Prediction["leaf_blight"], 1e-9)
	assert.Equal(t, "Nitrogen deficient", p.NutrientStatus)
}

func TestPredictDisease_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"error": "No file was provided"})
	}))

	_, err := c.PredictDisease(context.Background(), "x.png", nil)

	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "No file was provided", err.Error())
}

func TestFarmerProfile_ForwardsCookies(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("PHPSESSID")
		require.NoError(t, err)
		assert.Equal(t, "abc123", ck.Value)
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "OK",
			"data": map[string]any{
				"name": "Ravi Kumar", "state": "Punjab", "district": "Ludhiana",
				"farming_type": "Wheat", "land_area_acres": 4.5,
			},
		})
	}))

	ctx := WithCookies(context.Background(), []*http.Cookie{{Name: "PHPSESSID", Value: "abc123"}})
	p, err := c.FarmerProfile(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", p.Name)
	assert.Equal(t, 4.5, p.LandAreaAcres)
}

func TestFarmerProfile_NotOK(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ERROR", "message": "Not logged in"})
	}))

	_, err := c.FarmerProfile(context.Background())

	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Not logged in", err.Error())
}

func TestFarmerProfile_OKWithoutData(t *testing.T) {
	for name, body := range map[string]map[string]any{
		"null":    {"status": "OK", "data": nil},
		"missing": {"status": "OK"},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			}))

			_, err := c.FarmerProfile(context.Background())

			require.ErrorIs(t, err, ErrRejected)
			assert.NotErrorIs(t, err, ErrNetwork)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, epFarmerProfile, apiErr.Endpoint)
			assert.Equal(t, http.StatusOK, apiErr.Status)
		})
	}
}

func TestFarmerProfile_ShapeMismatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": []int{1, 2}})
	}))

	_, err := c.FarmerProfile(context.Background())

	assert.ErrorIs(t, err, ErrNetwork)
}

func TestActiveCycle(t *testing.T) {
	var inactive atomic.Bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inactive.Load() {
			writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"phase": "Vegetative", "crop_type": "Rice", "days_passed": 40, "duration": 120, "progress": 33.3,
		}})
	}))

	cycle, err := c.ActiveCycle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cycle)
	assert.Equal(t, 40, cycle.DaysPassed)

	inactive.Store(true)
	cycle, err = c.ActiveCycle(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cycle)
}

func TestCreateFundingRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "750", r.FormValue("amount"))
		assert.Equal(t, "seeds,other:pump repair", r.FormValue("purpose"))
		assert.Equal(t, "Repair the borewell pump", r.FormValue("description"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK"})
	}))

	err := c.CreateFundingRequest(context.Background(), models.FundingRequest{
		Amount:        750,
		Purposes:      []string{"seeds", "other"},
		CustomPurpose: "pump repair",
		Description:   "Repair the borewell pump",
	})

	assert.NoError(t, err)
}

func TestCreateFundingRequest_RejectedMessageVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ERROR", "message": "You already have a pending request"})
	}))

	err := c.CreateFundingRequest(context.Background(), models.FundingRequest{Amount: 1, Purposes: []string{"seeds"}, Description: "xxxxxxxxxxxx"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, Rejected, apiErr.Kind)
	assert.Equal(t, "You already have a pending request", apiErr.Error())
}

func TestFundingRequests_Empty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": []any{}})
	}))

	list, err := c.FundingRequests(context.Background())

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFundingSummary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "data": map[string]int{
			"total_requested": 1200, "available_funds": 800, "additional_needed": 400,
		}})
	}))

	s, err := c.FundingSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.FundingSummary{TotalRequested: 1200, AvailableFunds: 800, AdditionalNeeded: 400}, s)
}

func TestUnconfiguredEndpoint(t *testing.T) {
	c := New(Endpoints{}, nil, zerolog.Nop())
	_, err := c.FundingSummary(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}
