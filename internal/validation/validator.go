package validation

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// MinDescriptionLength is the minimum trimmed length of a funding description.
const MinDescriptionLength = 10

const dateLayout = "2006-01-02"

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// RequiredFields checks that every key in order has a non-blank value and
// reports the blank ones in form order.
func RequiredFields(order []string, values map[string]string) error {
	var missing []string
	for _, k := range order {
		if strings.TrimSpace(values[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return newError(MissingFields, missing...)
	}
	return nil
}

// ParseAmount accepts a whole, positive token amount.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, newError(InvalidAmount, "amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() || !d.IsInteger() || d.GreaterThan(maxAmount) {
		return 0, newError(InvalidAmount, "amount")
	}
	return d.IntPart(), nil
}

// Description returns the trimmed description if it is long enough.
func Description(raw string) (string, error) {
	d := strings.TrimSpace(raw)
	if len([]rune(d)) < MinDescriptionLength {
		return "", newError(DescriptionTooShort, "description")
	}
	return d, nil
}

// CropInput trims the recommender form and requires every field.
func CropInput(in models.CropInput) (models.CropInput, error) {
	out := models.CropInput{
		N:           strings.TrimSpace(in.N),
		P:           strings.TrimSpace(in.P),
		K:           strings.TrimSpace(in.K),
		Temperature: strings.TrimSpace(in.Temperature),
		Humidity:    strings.TrimSpace(in.Humidity),
		PH:          strings.TrimSpace(in.PH),
		Rainfall:    strings.TrimSpace(in.Rainfall),
	}
	if err := RequiredFields(models.CropInputFields, out.Fields()); err != nil {
		return models.CropInput{}, err
	}
	return out, nil
}

// FundingForm is the raw funding request modal.
type FundingForm struct {
	Amount        string
	Description   string
	Purposes      []string
	CustomPurpose string
}

// Funding validates the modal in the order the farmer sees the fields and
// returns a pending request ready to submit.
func Funding(f FundingForm) (models.FundingRequest, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return models.FundingRequest{}, err
	}
	desc, err := Description(f.Description)
	if err != nil {
		return models.FundingRequest{}, err
	}
	switch {
	case len(f.Purposes) == 0:
		return models.FundingRequest{}, newError(NoPurposeSelected, "purpose")
	case len(f.Purposes) > models.MaxPurposes:
		return models.FundingRequest{}, newError(TooManyPurposes, "purpose")
	}

	req := models.FundingRequest{
		Amount:      amount,
		Purposes:    append([]string(nil), f.Purposes...),
		Description: desc,
		Status:      models.FundingPending,
	}
	for _, p := range f.Purposes {
		if p != models.PurposeOther {
			continue
		}
		custom := strings.TrimSpace(f.CustomPurpose)
		if custom == "" {
			return models.FundingRequest{}, newError(MissingCustomPurpose, "custom_purpose")
		}
		req.CustomPurpose = custom
	}
	return req, nil
}

// UpdateFormFields lists the required farm update inputs in form order.
var UpdateFormFields = []string{"date", "day", "title", "description"}

// UpdateForm is the raw farm update form. Image is optional.
type UpdateForm struct {
	Date        string
	Day         string
	Title       string
	Description string
	Image       []byte
}

// Update validates a farm update; the returned update has no ID yet.
func Update(f UpdateForm) (models.FarmUpdate, error) {
	values := map[string]string{
		"date":        f.Date,
		"day":         f.Day,
		"title":       f.Title,
		"description": f.Description,
	}
	if err := RequiredFields(UpdateFormFields, values); err != nil {
		return models.FarmUpdate{}, err
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(f.Date))
	if err != nil {
		return models.FarmUpdate{}, newError(InvalidDate, "date")
	}
	day, err := strconv.Atoi(strings.TrimSpace(f.Day))
	if err != nil {
		return models.FarmUpdate{}, newError(InvalidDay, "day")
	}

	u := models.FarmUpdate{
		Date:        date,
		Day:         day,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
	}
	if len(f.Image) > 0 {
		u.Image, err = ImageDataURL(f.Image)
		if err != nil {
			return models.FarmUpdate{}, err
		}
	}
	return u, nil
}

// ImageDataURL checks that data is a decodable image and encodes it as a data URL.
func ImageDataURL(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", newError(InvalidImage, "photo")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", newError(InvalidImage, "photo")
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
