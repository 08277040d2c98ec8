// Package scaler wraps the pre-fitted min-max normalization used during
// model training. The parameters are loaded once at startup and never
// mutated; no fitting happens at request time.
package scaler

import (
	"encoding/json"
	"fmt"
	"os"

	"StockCast/internal/domain/models"
)

// artifact mirrors the exported sklearn MinMaxScaler state: per-feature
// scale_ and min_ such that scaled = x*scale + min.
type artifact struct {
	Features []string  `json:"features"`
	Scale    []float64 `json:"scale"`
	Min      []float64 `json:"min"`
}

// Scaler applies the fitted per-feature transform. Safe for concurrent
// use; all fields are read-only after Load.
type Scaler struct {
	features []string
	scale    []float64
	min      []float64
}

// Load reads the scaler artifact from path. Any inconsistency is fatal to
// the caller: the process must not serve predictions with a broken scaler.
func Load(path string) (*Scaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse scaler artifact: %w", err)
	}

	n := len(models.FeatureColumns)
	if len(a.Features) != n {
		return nil, fmt.Errorf("scaler artifact: expected %d features, got %d", n, len(a.Features))
	}
	for i, name := range models.FeatureColumns {
		if a.Features[i] != name {
			return nil, fmt.Errorf("scaler artifact: feature %d is %q, expected %q", i, a.Features[i], name)
		}
	}
	if len(a.Scale) != n || len(a.Min) != n {
		return nil, fmt.Errorf("scaler artifact: scale/min must be %d wide", n)
	}
	for i, s := range a.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler artifact: zero scale for feature %s", a.Features[i])
		}
	}

	return &Scaler{features: a.Features, scale: a.Scale, min: a.Min}, nil
}

// Transform normalizes a window into the (1, steps, features) batch the
// model expects. Row width must match the fitted feature count.
func (s *Scaler) Transform(w *models.Window) ([][][]float64, error) {
	if w == nil || len(w.Rows) == 0 {
		return nil, &models.ShapeError{Dim: "rows", Want: 1, Got: 0}
	}
	scaled := make([][]float64, len(w.Rows))
	for i, row := range w.Rows {
		if len(row) != len(s.features) {
			return nil, &models.ShapeError{Dim: "features", Want: len(s.features), Got: len(row)}
		}
		out := make([]float64, len(row))
		for j, v := range row {
			out[j] = v*s.scale[j] + s.min[j]
		}
		scaled[i] = out
	}
	// Leading batch dimension.
	return [][][]float64{scaled}, nil
}

// InverseClose maps one normalized Close value back to price scale. The
// transform was fitted jointly over all features, so inversion needs an
// equal-width row: the scalar goes into the Close slot of a zero-filled
// row and only the Close component of the inverted row is meaningful.
func (s *Scaler) InverseClose(v float64) float64 {
	row := make([]float64, len(s.features))
	row[models.CloseIndex] = v
	j := models.CloseIndex
	return (row[j] - s.min[j]) / s.scale[j]
}
