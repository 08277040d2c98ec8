package models

import "time"

// FeatureColumns is the canonical feature order for model input. Array
// position encodes feature identity, so the sequence builder and the
// scaler must both use this ordering.
var FeatureColumns = [5]string{"Open", "High", "Low", "Volume", "Close"}

// CloseIndex is the position of the Close feature in FeatureColumns.
const CloseIndex = 4

// Horizons are the forecast offsets in trading days, in output order.
var Horizons = [4]int{1, 3, 7, 15}

// OHLCVRow is one trading day of prices for a single ticker.
type OHLCVRow struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Volume float64
	Close  float64
}

// Window is a fixed-length chronological sequence of feature vectors,
// oldest row first. Each row is len(FeatureColumns) wide.
type Window struct {
	Rows [][]float64
}

// NewWindow builds a window from OHLCV rows preserving their order.
func NewWindow(rows []OHLCVRow) *Window {
	w := &Window{Rows: make([][]float64, len(rows))}
	for i, r := range rows {
		w.Rows[i] = []float64{r.Open, r.High, r.Low, r.Volume, r.Close}
	}
	return w
}

// Len returns the number of rows in the window.
func (w *Window) Len() int { return len(w.Rows) }

// Closes returns the Close column in row order.
func (w *Window) Closes() []float64 {
	out := make([]float64, len(w.Rows))
	for i, r := range w.Rows {
		out[i] = r[CloseIndex]
	}
	return out
}
