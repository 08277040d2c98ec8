// Package inference composes the scaler and the loaded model into the
// single predict operation the handlers call.
package inference

import (
	"fmt"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/scaler"
)

// Engine owns the model and scaler pair. Both are loaded once at startup
// and shared read-only across concurrent requests; the engine holds no
// per-request state.
type Engine struct {
	scaler *scaler.Scaler
	model  domrepo.Model
}

func NewEngine(s *scaler.Scaler, m domrepo.Model) *Engine {
	return &Engine{scaler: s, model: m}
}

// Predict normalizes the window, invokes the model once, and inverse
// transforms each horizon output back to price scale. Results are in
// models.Horizons order.
func (e *Engine) Predict(w *models.Window) (models.HorizonSet, error) {
	var set models.HorizonSet

	batch, err := e.scaler.Transform(w)
	if err != nil {
		return set, err
	}

	out, err := e.model.Predict(batch)
	if err != nil {
		return set, err
	}
	if len(out) != 1 {
		return set, &models.ShapeError{Dim: "batch", Want: 1, Got: len(out)}
	}
	if len(out[0]) != len(models.Horizons) {
		return set, &models.ShapeError{Dim: "horizons", Want: len(models.Horizons), Got: len(out[0])}
	}

	for i, v := range out[0] {
		set[i] = e.scaler.InverseClose(v)
	}
	return set, nil
}

// Describe reports the engine configuration for startup logging.
func (e *Engine) Describe() string {
	return fmt.Sprintf("horizons=%v features=%v", models.Horizons, models.FeatureColumns)
}
