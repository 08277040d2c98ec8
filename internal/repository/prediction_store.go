package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/store/duckdb"
	"StockCast/pkg/util"
)

// Schema for the two persisted tables. model_performance rows are keyed
// by (ticker, prediction_date) so the save path can rely on the unique
// constraint instead of a separate existence check.
const (
	createMetricsArchive = `
CREATE SEQUENCE IF NOT EXISTS metrics_archive_seq;
CREATE TABLE IF NOT EXISTS metrics_archive (
    id BIGINT PRIMARY KEY DEFAULT nextval('metrics_archive_seq'),
    timestamp VARCHAR NOT NULL,
    request_count BIGINT,
    cpu_usage DOUBLE,
    memory_usage DOUBLE,
    request_processing_seconds DOUBLE,
    forecast_horizon_1_day DOUBLE,
    forecast_horizon_3_days DOUBLE,
    forecast_horizon_7_days DOUBLE,
    forecast_horizon_15_days DOUBLE
);`

	createModelPerformance = `
CREATE SEQUENCE IF NOT EXISTS model_performance_seq;
CREATE TABLE IF NOT EXISTS model_performance (
    id BIGINT PRIMARY KEY DEFAULT nextval('model_performance_seq'),
    ticker VARCHAR NOT NULL,
    prediction_date VARCHAR NOT NULL,
    target_date_1d VARCHAR,
    target_date_3d VARCHAR,
    target_date_7d VARCHAR,
    target_date_15d VARCHAR,
    predicted_close_1d DOUBLE,
    predicted_close_3d DOUBLE,
    predicted_close_7d DOUBLE,
    predicted_close_15d DOUBLE,
    real_close_1d DOUBLE,
    real_close_3d DOUBLE,
    real_close_7d DOUBLE,
    real_close_15d DOUBLE,
    UNIQUE (ticker, prediction_date)
);`
)

// DuckDBStore implements domain/repository.PredictionStore on the
// embedded DuckDB file.
type DuckDBStore struct {
	client  *duckdb.Client
	metrics domrepo.Metrics
}

func NewDuckDBStore(client *duckdb.Client, metrics domrepo.Metrics) *DuckDBStore {
	return &DuckDBStore{client: client, metrics: metrics}
}

// EnsureSchema creates the tables if absent. Safe on every start.
func (s *DuckDBStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createMetricsArchive, createModelPerformance} {
		if _, err := s.client.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SavePrediction inserts one prediction batch. Weekend dates are never
// recorded; an existing (ticker, date) batch makes the insert a no-op.
// Target dates advance by business days only, holidays not excluded.
func (s *DuckDBStore) SavePrediction(ctx context.Context, ticker string, preds models.HorizonSet, date time.Time) (bool, error) {
	if util.IsWeekend(date) {
		return false, nil
	}

	targets := make([]string, len(models.Horizons))
	for i, h := range models.Horizons {
		targets[i] = util.FormatDate(util.AddBusinessDays(date, h))
	}

	res, err := s.client.DB().ExecContext(ctx, `
		INSERT INTO model_performance (
			ticker, prediction_date,
			target_date_1d, target_date_3d, target_date_7d, target_date_15d,
			predicted_close_1d, predicted_close_3d, predicted_close_7d, predicted_close_15d
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, prediction_date) DO NOTHING`,
		ticker, util.FormatDate(date),
		targets[0], targets[1], targets[2], targets[3],
		preds[0], preds[1], preds[2], preds[3],
	)
	if err != nil {
		return false, fmt.Errorf("insert prediction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert prediction: %w", err)
	}
	return n > 0, nil
}

// UpdateRealized back-fills the observed close into every horizon slot of
// every row of the ticker whose target date matches. Rows sharing a
// target date all update in the one pass; no match is not an error.
func (s *DuckDBStore) UpdateRealized(ctx context.Context, ticker, observedDate string, observedClose float64) error {
	_, err := s.client.DB().ExecContext(ctx, `
		UPDATE model_performance
		SET real_close_1d  = CASE WHEN target_date_1d  = ? THEN ? ELSE real_close_1d  END,
		    real_close_3d  = CASE WHEN target_date_3d  = ? THEN ? ELSE real_close_3d  END,
		    real_close_7d  = CASE WHEN target_date_7d  = ? THEN ? ELSE real_close_7d  END,
		    real_close_15d = CASE WHEN target_date_15d = ? THEN ? ELSE real_close_15d END
		WHERE ticker = ?`,
		observedDate, observedClose,
		observedDate, observedClose,
		observedDate, observedClose,
		observedDate, observedClose,
		ticker,
	)
	if err != nil {
		return fmt.Errorf("update realized close: %w", err)
	}
	return nil
}

// SelectPredictions returns all rows for the ticker. NaN and infinities
// cannot survive JSON encoding, so they come back as nil.
func (s *DuckDBStore) SelectPredictions(ctx context.Context, ticker string) ([]models.PredictionRecord, error) {
	rows, err := s.client.DB().QueryContext(ctx, `
		SELECT id, ticker, prediction_date,
		       target_date_1d, target_date_3d, target_date_7d, target_date_15d,
		       predicted_close_1d, predicted_close_3d, predicted_close_7d, predicted_close_15d,
		       real_close_1d, real_close_3d, real_close_7d, real_close_15d
		FROM model_performance
		WHERE ticker = ?
		ORDER BY id`,
		ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		var pred, real [4]sql.NullFloat64
		err := rows.Scan(
			&r.ID, &r.Ticker, &r.PredictionDate,
			&r.TargetDate1D, &r.TargetDate3D, &r.TargetDate7D, &r.TargetDate15D,
			&pred[0], &pred[1], &pred[2], &pred[3],
			&real[0], &real[1], &real[2], &real[3],
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		r.PredictedClose1D = finiteOrNil(pred[0])
		r.PredictedClose3D = finiteOrNil(pred[1])
		r.PredictedClose7D = finiteOrNil(pred[2])
		r.PredictedClose15D = finiteOrNil(pred[3])
		r.RealClose1D = finiteOrNil(real[0])
		r.RealClose3D = finiteOrNil(real[1])
		r.RealClose7D = finiteOrNil(real[2])
		r.RealClose15D = finiteOrNil(real[3])
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}
	return records, nil
}

// RecordMetricsSnapshot appends one metrics row, reading the current
// counters and resource gauges at call time.
func (s *DuckDBStore) RecordMetricsSnapshot(ctx context.Context, preds models.HorizonSet, processingSeconds float64) error {
	_, err := s.client.DB().ExecContext(ctx, `
		INSERT INTO metrics_archive (
			timestamp, request_count, cpu_usage, memory_usage,
			request_processing_seconds,
			forecast_horizon_1_day, forecast_horizon_3_days,
			forecast_horizon_7_days, forecast_horizon_15_days
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Format("2006-01-02 15:04:05"),
		s.metrics.RequestCount(),
		s.metrics.CPUUsage(),
		s.metrics.MemoryUsage(),
		processingSeconds,
		preds[0], preds[1], preds[2], preds[3],
	)
	if err != nil {
		return fmt.Errorf("insert metrics snapshot: %w", err)
	}
	return nil
}

func finiteOrNil(v sql.NullFloat64) *float64 {
	if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return nil
	}
	f := v.Float64
	return &f
}
