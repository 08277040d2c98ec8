package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// PredictionStore persists prediction batches and realized closes.
type PredictionStore interface {
	// EnsureSchema creates the backing tables if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// SavePrediction inserts one prediction batch keyed by (ticker, date).
	// Returns false without writing when the date is a weekend or a batch
	// for that key already exists.
	SavePrediction(ctx context.Context, ticker string, preds models.HorizonSet, date time.Time) (bool, error)

	// UpdateRealized back-fills the observed close into every stored row
	// of the ticker whose target date matches observedDate (YYYY-MM-DD).
	UpdateRealized(ctx context.Context, ticker, observedDate string, observedClose float64) error

	// SelectPredictions returns all stored rows for the ticker in insertion
	// order. Non-finite numerics are coerced to nil.
	SelectPredictions(ctx context.Context, ticker string) ([]models.PredictionRecord, error)

	// RecordMetricsSnapshot appends one metrics row reading current
	// counters and resource gauges at call time.
	RecordMetricsSnapshot(ctx context.Context, preds models.HorizonSet, processingSeconds float64) error
}

// DataFeed provides historical daily OHLCV rows for a symbol. Rows are
// chronological and weekend-free.
type DataFeed interface {
	Daily(ctx context.Context, ticker string, lookbackDays int) ([]models.OHLCVRow, error)
}

// Model is a loaded pre-trained sequence model. Predict consumes a scaled
// batch shaped (batch, steps, features) and yields one normalized output
// per horizon for each batch element.
type Model interface {
	Predict(batch [][][]float64) ([][]float64, error)
}

// Metrics records operational counters and gauges, and exposes current
// values for persisted snapshots.
type Metrics interface {
	ObserveRequest(seconds float64)
	RecordPrediction(values [4]float64, seconds float64)
	SetResourceUsage(cpuPercent, memPercent float64)

	RequestCount() int64
	CPUUsage() float64
	MemoryUsage() float64
}
