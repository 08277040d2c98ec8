package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	"StockCast/internal/inference"
	"StockCast/internal/model"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/scaler"
	"StockCast/internal/sequence"
	"StockCast/internal/service/cache"
	"StockCast/internal/service/resources"
	"StockCast/internal/service/yahoo"
	"StockCast/internal/usecase"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
	"StockCast/pkg/store/duckdb"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRecorder creates the Prometheus metrics recorder.
func ProvideRecorder() *metrics.Recorder {
	return metrics.New()
}

// ProvideMetrics exposes the recorder through the domain interface.
func ProvideMetrics(r *metrics.Recorder) repository.Metrics {
	return r
}

// ProvideStoreClient opens the DuckDB file backing the prediction store.
func ProvideStoreClient(cfg *config.Config) (*duckdb.Client, error) {
	client, err := duckdb.NewClient(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("store client: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore creates the store and initializes its schema.
func ProvidePredictionStore(client *duckdb.Client, m repository.Metrics) (repository.PredictionStore, error) {
	store := internalrepo.NewDuckDBStore(client, m)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}
	return store, nil
}

// ProvideCache selects the feed cache backend from config.
func ProvideCache(cfg *config.Config) cache.BytesCache {
	return cache.New(cache.Config{
		RedisEnabled:  cfg.Feed.Redis.Enabled,
		RedisAddr:     cfg.Feed.Redis.Addr,
		RedisPassword: cfg.Feed.Redis.Password,
		RedisDB:       cfg.Feed.Redis.DB,
	})
}

// ProvideDataFeed creates the market-data feed client.
func ProvideDataFeed(cfg *config.Config, c cache.BytesCache, l *applogger.Logger) repository.DataFeed {
	return yahoo.New(cfg.Feed.BaseURL, c, cfg.Feed.CacheTTL, l)
}

// ProvideScaler loads the feature scaler artifact.
func ProvideScaler(cfg *config.Config) (*scaler.Scaler, error) {
	s, err := scaler.Load(cfg.Model.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	return s, nil
}

// ProvideModel loads the network weights artifact.
func ProvideModel(cfg *config.Config) (repository.Model, error) {
	n, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return n, nil
}

// ProvideEngine creates the inference engine.
func ProvideEngine(s *scaler.Scaler, m repository.Model) *inference.Engine {
	return inference.NewEngine(s, m)
}

// ProvideBuilder creates the sequence window builder.
func ProvideBuilder(cfg *config.Config) *sequence.Builder {
	return sequence.NewBuilder(cfg.Model.SeqLength)
}

// ProvideForecaster creates the forecast use case.
func ProvideForecaster(
	builder *sequence.Builder,
	engine *inference.Engine,
	store repository.PredictionStore,
	feed repository.DataFeed,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Forecaster {
	return usecase.NewForecaster(builder, engine, store, feed, m, l, cfg.Feed.Ticker, cfg.Feed.LookbackDays)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(l *applogger.Logger, f *usecase.Forecaster) xhttp.Handler {
	return api.NewPredictionsHandler(l, f)
}

// ProvideSampler creates the resource usage sampler.
func ProvideSampler(m repository.Metrics, cfg *config.Config, l *applogger.Logger) *resources.Sampler {
	return resources.NewSampler(m, cfg.Sampler.Interval, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	recorder *metrics.Recorder,
	sampler *resources.Sampler,
	storeClient *duckdb.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, recorder, sampler, storeClient, handler)
}
