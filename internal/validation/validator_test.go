package validation

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRequiredFields_ListsExactlyTheEmptyKeys(t *testing.T) {
	values := map[string]string{"N": "90", "P": "  ", "K": "43", "temperature": "", "humidity": "80", "ph": "6.5", "rainfall": ""}

	err := RequiredFields(models.CropInputFields, values)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MissingFields, verr.Kind)
	assert.Equal(t, []string{"P", "temperature", "rainfall"}, verr.Fields)
	assert.Equal(t, "Please fill: P, temperature, rainfall", err.Error())
}

func TestRequiredFields_AllPresent(t *testing.T) {
	values := map[string]string{"a": "1", "b": "x"}
	assert.NoError(t, RequiredFields([]string{"a", "b"}, values))
}

func TestCropInput_TrimsValues(t *testing.T) {
	in := models.CropInput{N: " 90 ", P: "42", K: "43", Temperature: "20.8", Humidity: "82", PH: "6.5", Rainfall: "202.9"}

	out, err := CropInput(in)

	require.NoError(t, err)
	assert.Equal(t, "90", out.N)
}

func TestParseAmount(t *testing.T) {
	valid := map[string]int64{"1": 1, "500": 500, " 25 ": 25, "100.00": 100, "9223372036854775807": math.MaxInt64}
	for raw, want := range valid {
		got, err := ParseAmount(raw)
		if assert.NoError(t, err, raw) {
			assert.Equal(t, want, got, raw)
		}
	}

	invalid := []string{
		"", "0", "-5", "abc", "12.5", "1e",
		// beyond int64
		"9223372036854775808", "1e19", "18446744073709551617",
	}
	for _, raw := range invalid {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrInvalidAmount, "ParseAmount(%q)", raw)
	}
}

func TestFunding_ShortDescriptionMarksField(t *testing.T) {
	_, err := Funding(FundingForm{Amount: "200", Description: "short", Purposes: []string{"seeds"}})

	require.ErrorIs(t, err, ErrDescriptionTooShort)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Invalid("description"))
	assert.False(t, verr.Invalid("amount"))
}

func TestFunding_ValidationOrder(t *testing.T) {
	// amount is checked before description, description before purposes
	_, err := Funding(FundingForm{Amount: "0", Description: "short"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Funding(FundingForm{Amount: "10", Description: "tiny"})
	assert.ErrorIs(t, err, ErrDescriptionTooShort)

	_, err = Funding(FundingForm{Amount: "10", Description: "buy seeds for kharif"})
	assert.ErrorIs(t, err, ErrNoPurposeSelected)

	_, err = Funding(FundingForm{Amount: "10", Description: "buy seeds for kharif", Purposes: []string{"a", "b", "c", "d"}})
	assert.ErrorIs(t, err, ErrTooManyPurposes)

	_, err = Funding(FundingForm{Amount: "10", Description: "buy seeds for kharif", Purposes: []string{"seeds", "other"}, CustomPurpose: "   "})
	assert.ErrorIs(t, err, ErrMissingCustomPurpose)
}

func TestFunding_Valid(t *testing.T) {
	req, err := Funding(FundingForm{
		Amount:        "750",
		Description:   "  Drip lines for the east field  ",
		Purposes:      []string{"irrigation", "other"},
		CustomPurpose: " pump repair ",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(750), req.Amount)
	assert.Equal(t, "Drip lines for the east field", req.Description)
	assert.Equal(t, models.FundingPending, req.Status)
	assert.Equal(t, "irrigation,other:pump repair", req.PurposeField())
}

func TestUpdate_MissingFields(t *testing.T) {
	_, err := Update(UpdateForm{Date: "2025-06-01", Title: "Sowing"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"day", "description"}, verr.Fields)
}

func TestUpdate_InvalidDay(t *testing.T) {
	_, err := Update(UpdateForm{Date: "2025-06-01", Day: "three", Title: "Sowing", Description: "Seeds in"})
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestUpdate_WithImage(t *testing.T) {
	u, err := Update(UpdateForm{Date: "2025-06-01", Day: "12", Title: "Sprouting", Description: "First leaves", Image: pngBytes(t)})

	require.NoError(t, err)
	assert.Equal(t, 12, u.Day)
	assert.True(t, strings.HasPrefix(u.Image, "data:image/png;base64,"))
}

func TestImageDataURL_RejectsNonImage(t *testing.T) {
	_, err := ImageDataURL([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, "Please select a valid image file.", err.Error())
}
