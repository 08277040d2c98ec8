package models

import "fmt"

// HorizonSet holds one predicted close per horizon, in Horizons order.
type HorizonSet [4]float64

// ResponseMap renders the set in the wire format of the predict endpoints:
// {"forecast_horizon_<h>_day": <price>}.
func (s HorizonSet) ResponseMap() map[string]float64 {
	out := make(map[string]float64, len(Horizons))
	for i, h := range Horizons {
		out[fmt.Sprintf("forecast_horizon_%d_day", h)] = s[i]
	}
	return out
}

// PredictionRecord is one persisted prediction batch for a ticker and day.
// Numeric fields are pointers so that missing or non-finite values encode
// as JSON null.
type PredictionRecord struct {
	ID                int64    `json:"id"`
	Ticker            string   `json:"ticker"`
	PredictionDate    string   `json:"prediction_date"`
	TargetDate1D      string   `json:"target_date_1d"`
	TargetDate3D      string   `json:"target_date_3d"`
	TargetDate7D      string   `json:"target_date_7d"`
	TargetDate15D     string   `json:"target_date_15d"`
	PredictedClose1D  *float64 `json:"predicted_close_1d"`
	PredictedClose3D  *float64 `json:"predicted_close_3d"`
	PredictedClose7D  *float64 `json:"predicted_close_7d"`
	PredictedClose15D *float64 `json:"predicted_close_15d"`
	RealClose1D       *float64 `json:"real_close_1d"`
	RealClose3D       *float64 `json:"real_close_3d"`
	RealClose7D       *float64 `json:"real_close_7d"`
	RealClose15D      *float64 `json:"real_close_15d"`
}

// PriceDataRequest is the JSON body of the predict_prices endpoint. Each
// column must carry at least the model window length of values.
type PriceDataRequest struct {
	Open   []float64 `json:"open" validate:"required,min=1"`
	High   []float64 `json:"high" validate:"required,min=1"`
	Low    []float64 `json:"low" validate:"required,min=1"`
	Volume []float64 `json:"volume" validate:"required,min=1"`
	Close  []float64 `json:"close" validate:"required,min=1"`
}
