package usecase

import (
	"context"
	"io"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/inference"
	"StockCast/internal/sequence"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Forecaster drives the prediction flows: window construction, model
// inference, persistence, and metrics. It holds no per-request state.
type Forecaster struct {
	builder  *sequence.Builder
	engine   *inference.Engine
	store    domrepo.PredictionStore
	feed     domrepo.DataFeed
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
	ticker   string
	lookback int
	now      func() time.Time
}

func NewForecaster(
	builder *sequence.Builder,
	engine *inference.Engine,
	store domrepo.PredictionStore,
	feed domrepo.DataFeed,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
	ticker string,
	lookbackDays int,
) *Forecaster {
	return &Forecaster{
		builder:  builder,
		engine:   engine,
		store:    store,
		feed:     feed,
		metrics:  metrics,
		logger:   logger,
		ticker:   ticker,
		lookback: lookbackDays,
		now:      time.Now,
	}
}

// PredictArchive computes the horizon forecasts from an uploaded CSV.
func (f *Forecaster) PredictArchive(ctx context.Context, r io.Reader) (models.HorizonSet, error) {
	start := f.now()

	w, err := f.builder.FromCSV(r)
	if err != nil {
		return models.HorizonSet{}, err
	}

	preds, err := f.engine.Predict(w)
	if err != nil {
		return models.HorizonSet{}, err
	}

	f.finish(ctx, preds, start)
	return preds, nil
}

// PredictPrices computes the horizon forecasts from raw price columns.
func (f *Forecaster) PredictPrices(ctx context.Context, req *models.PriceDataRequest) (models.HorizonSet, error) {
	start := f.now()

	w, err := f.builder.FromColumns(req.Open, req.High, req.Low, req.Volume, req.Close)
	if err != nil {
		return models.HorizonSet{}, err
	}

	preds, err := f.engine.Predict(w)
	if err != nil {
		return models.HorizonSet{}, err
	}

	f.finish(ctx, preds, start)
	return preds, nil
}

// PredictToday fetches fresh feed data for the configured ticker, runs
// inference, persists the batch keyed by today's date, and back-fills the
// latest realized close into any stored rows targeting it.
func (f *Forecaster) PredictToday(ctx context.Context) (models.HorizonSet, error) {
	start := f.now()

	rows, err := f.feed.Daily(ctx, f.ticker, f.lookback)
	if err != nil {
		return models.HorizonSet{}, err
	}

	w, err := f.builder.FromRows(rows)
	if err != nil {
		return models.HorizonSet{}, err
	}

	preds, err := f.engine.Predict(w)
	if err != nil {
		return models.HorizonSet{}, err
	}

	saved, err := f.store.SavePrediction(ctx, f.ticker, preds, start)
	if err != nil {
		return models.HorizonSet{}, err
	}
	if !saved {
		f.logger.Info("prediction batch not stored",
			xlogger.String("ticker", f.ticker),
			xlogger.String("date", util.FormatDate(start)),
		)
	}

	// The most recent feed row carries the freshest realized close.
	latest := rows[len(rows)-1]
	if err := f.store.UpdateRealized(ctx, f.ticker, util.FormatDate(latest.Date), latest.Close); err != nil {
		return models.HorizonSet{}, err
	}

	f.finish(ctx, preds, start)
	return preds, nil
}

// Predictions returns every stored prediction batch for the ticker.
func (f *Forecaster) Predictions(ctx context.Context) ([]models.PredictionRecord, error) {
	return f.store.SelectPredictions(ctx, f.ticker)
}

// Ticker returns the configured symbol.
func (f *Forecaster) Ticker() string { return f.ticker }

// finish updates the Prometheus metrics and appends a metrics snapshot
// row. Snapshot failures are logged, not surfaced: the prediction itself
// already succeeded.
func (f *Forecaster) finish(ctx context.Context, preds models.HorizonSet, start time.Time) {
	seconds := f.now().Sub(start).Seconds()
	f.metrics.RecordPrediction(preds, seconds)
	if err := f.store.RecordMetricsSnapshot(ctx, preds, seconds); err != nil {
		f.logger.Error("metrics snapshot failed", xlogger.Error(err))
	}
}
