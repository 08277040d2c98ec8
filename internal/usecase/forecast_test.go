package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/internal/inference"
	"StockCast/internal/scaler"
	"StockCast/internal/sequence"
	xlogger "StockCast/pkg/logger"
)

// sumModel derives the outputs from the input so tests can observe which
// rows reached the model.
type sumModel struct{}

func (sumModel) Predict(batch [][][]float64) ([][]float64, error) {
	var sum float64
	for _, row := range batch[0] {
		for _, v := range row {
			sum += v
		}
	}
	return [][]float64{{sum, sum + 0.01, sum + 0.02, sum + 0.03}}, nil
}

type memStore struct {
	saved     []models.PredictionRecord
	realized  map[string]float64
	snapshots int
	saveErr   error
}

func (s *memStore) EnsureSchema(context.Context) error { return nil }

func (s *memStore) SavePrediction(_ context.Context, ticker string, preds models.HorizonSet, date time.Time) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	s.saved = append(s.saved, models.PredictionRecord{Ticker: ticker, PredictionDate: date.Format("2006-01-02")})
	return true, nil
}

func (s *memStore) UpdateRealized(_ context.Context, _, observedDate string, observedClose float64) error {
	if s.realized == nil {
		s.realized = make(map[string]float64)
	}
	s.realized[observedDate] = observedClose
	return nil
}

func (s *memStore) SelectPredictions(context.Context, string) ([]models.PredictionRecord, error) {
	return s.saved, nil
}

func (s *memStore) RecordMetricsSnapshot(context.Context, models.HorizonSet, float64) error {
	s.snapshots++
	return nil
}

type memFeed struct {
	rows []models.OHLCVRow
	err  error
}

func (f *memFeed) Daily(context.Context, string, int) ([]models.OHLCVRow, error) {
	return f.rows, f.err
}

type memMetrics struct {
	predictions int
}

func (m *memMetrics) ObserveRequest(float64)               {}
func (m *memMetrics) RecordPrediction([4]float64, float64) { m.predictions++ }
func (m *memMetrics) SetResourceUsage(float64, float64)    {}
func (m *memMetrics) RequestCount() int64                  { return 0 }
func (m *memMetrics) CPUUsage() float64                    { return 0 }
func (m *memMetrics) MemoryUsage() float64                 { return 0 }

func testEngine(t *testing.T) *inference.Engine {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"features": []string{"Open", "High", "Low", "Volume", "Close"},
		"scale":    []float64{0.01, 0.01, 0.01, 1e-6, 0.01},
		"min":      []float64{0, 0, 0, 0, 0},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scaler.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	s, err := scaler.Load(path)
	require.NoError(t, err)
	return inference.NewEngine(s, sumModel{})
}

func newForecaster(t *testing.T, store *memStore, feed *memFeed, metrics *memMetrics) *Forecaster {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return NewForecaster(sequence.NewBuilder(60), testEngine(t), store, feed, metrics, l, "BBAS3.SA", 120)
}

func archiveCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("Open,High,Low,Volume,Close\n")
	for i := 0; i < rows; i++ {
		v := float64(i + 1)
		fmt.Fprintf(&sb, "%.1f,%.1f,%.1f,%.0f,%.1f\n", v, v+1, v-0.5, v*1000, v+0.5)
	}
	return sb.String()
}

func TestPredictArchiveUsesOnlyWindowTail(t *testing.T) {
	store := &memStore{}
	metrics := &memMetrics{}
	f := newForecaster(t, store, &memFeed{}, metrics)
	ctx := context.Background()

	got65, err := f.PredictArchive(ctx, strings.NewReader(archiveCSV(65)))
	require.NoError(t, err)

	// A second file whose last 60 rows are identical must give the exact
	// same output: prepend five more dummy rows.
	lines := strings.SplitN(archiveCSV(65), "\n", 2)
	padded := lines[0] + "\n0.1,0.2,0.1,100,0.1\n0.1,0.2,0.1,100,0.1\n0.1,0.2,0.1,100,0.1\n0.1,0.2,0.1,100,0.1\n0.1,0.2,0.1,100,0.1\n" + lines[1]

	got70, err := f.PredictArchive(ctx, strings.NewReader(padded))
	require.NoError(t, err)
	require.Equal(t, got65, got70)

	// Both calls updated metrics and snapshots; neither persisted a batch.
	require.Equal(t, 2, metrics.predictions)
	require.Equal(t, 2, store.snapshots)
	require.Empty(t, store.saved)
}

func TestPredictArchiveSurfacesInputFaults(t *testing.T) {
	f := newForecaster(t, &memStore{}, &memFeed{}, &memMetrics{})
	ctx := context.Background()

	_, err := f.PredictArchive(ctx, strings.NewReader(archiveCSV(10)))
	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)

	_, err = f.PredictArchive(ctx, strings.NewReader("Open,High\n1,2\n"))
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func feedRows(n int) []models.OHLCVRow {
	rows := make([]models.OHLCVRow, n)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		v := float64(i + 10)
		rows[i] = models.OHLCVRow{Date: date, Open: v, High: v + 1, Low: v - 1, Volume: v * 100, Close: v + 0.5}
		date = date.AddDate(0, 0, 1)
	}
	return rows
}

func TestPredictTodayPersistsAndBackfills(t *testing.T) {
	store := &memStore{}
	metrics := &memMetrics{}
	rows := feedRows(80)
	f := newForecaster(t, store, &memFeed{rows: rows}, metrics)

	// Pin "today" to a Monday.
	monday := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return monday }

	preds, err := f.PredictToday(context.Background())
	require.NoError(t, err)
	for _, v := range preds {
		require.NotZero(t, v)
	}

	require.Len(t, store.saved, 1)
	require.Equal(t, "2024-06-10", store.saved[0].PredictionDate)

	latest := rows[len(rows)-1]
	got, ok := store.realized[latest.Date.Format("2006-01-02")]
	require.True(t, ok, "latest close must be back-filled")
	require.Equal(t, latest.Close, got)

	require.Equal(t, 1, metrics.predictions)
	require.Equal(t, 1, store.snapshots)
}

func TestPredictTodayFeedFailure(t *testing.T) {
	f := newForecaster(t, &memStore{}, &memFeed{err: errors.New("feed down")}, &memMetrics{})
	_, err := f.PredictToday(context.Background())
	require.Error(t, err)
}

func TestPredictTodayStoreFailure(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	f := newForecaster(t, store, &memFeed{rows: feedRows(80)}, &memMetrics{})
	f.now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }

	_, err := f.PredictToday(context.Background())
	require.Error(t, err)
}
