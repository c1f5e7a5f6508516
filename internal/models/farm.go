package models

import (
	"encoding/json"
	"time"
)

// FarmUpdate is a dated progress post shown to investors.
type FarmUpdate struct {
	ID          int       `json:"id"`
	Date        time.Time `json:"date"`
	Day         int       `json:"day"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"` // data URL
}

// FarmerProfile is the signed-in farmer as the profile endpoint reports it.
type FarmerProfile struct {
	Name          string  `json:"name"`
	State         string  `json:"state"`
	District      string  `json:"district"`
	FarmingType   string  `json:"farming_type"`
	LandAreaAcres float64 `json:"land_area_acres"`
}

type FarmImages struct {
	Images []string `json:"images"`
}

// CropCycle is the farmer's active growing season.
type CropCycle struct {
	Phase      string  `json:"phase"`
	CropType   string  `json:"crop_type"`
	DaysPassed int     `json:"days_passed"`
	Duration   int     `json:"duration"`
	Progress   float64 `json:"progress"`
}

func (p *FarmerProfile) UnmarshalJSON(b []byte) error {
	type plain FarmerProfile
	aux := struct {
		*plain
		LandAreaAcres json.RawMessage `json:"land_area_acres"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var err error
	p.LandAreaAcres, err = decodeFloat("land_area_acres", aux.LandAreaAcres)
	return err
}

func (c *CropCycle) UnmarshalJSON(b []byte) error {
	type plain CropCycle
	aux := struct {
		*plain
		DaysPassed json.RawMessage `json:"days_passed"`
		Duration   json.RawMessage `json:"duration"`
		Progress   json.RawMessage `json:"progress"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	days, err := decodeInt("days_passed", aux.DaysPassed)
	if err != nil {
		return err
	}
	duration, err := decodeInt("duration", aux.Duration)
	if err != nil {
		return err
	}
	progress, err := decodeFloat("progress", aux.Progress)
	if err != nil {
		return err
	}
	c.DaysPassed, c.Duration, c.Progress = int(days), int(duration), progress
	return nil
}
