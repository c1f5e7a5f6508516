package models

// CropInputFields lists the soil and weather inputs of the crop recommender in form order.
var CropInputFields = []string{"N", "P", "K", "temperature", "humidity", "ph", "rainfall"}

// CropInput carries the recommender form values as typed by the farmer.
type CropInput struct {
	N           string `json:"N"`
	P           string `json:"P"`
	K           string `json:"K"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	PH          string `json:"ph"`
	Rainfall    string `json:"rainfall"`
}

// Fields returns the values keyed by their form names.
func (c CropInput) Fields() map[string]string {
	return map[string]string{
		"N":           c.N,
		"P":           c.P,
		"K":           c.K,
		"temperature": c.Temperature,
		"humidity":    c.Humidity,
		"ph":          c.PH,
		"rainfall":    c.Rainfall,
	}
}

// DiseasePrediction is the image classifier output: label -> probability in [0,1].
type DiseasePrediction struct {
	Prediction     map[string]float64 `json:"prediction"`
	NutrientStatus string             `json:"nutrient_status,omitempty"`
}
