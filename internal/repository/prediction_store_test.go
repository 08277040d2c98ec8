package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockCast/internal/domain/models"
	"StockCast/pkg/store/duckdb"
)

// stubMetrics provides fixed counter and gauge values for snapshots.
type stubMetrics struct {
	requests int64
	cpu      float64
	memory   float64
}

func (m *stubMetrics) ObserveRequest(float64)               {}
func (m *stubMetrics) RecordPrediction([4]float64, float64) {}
func (m *stubMetrics) SetResourceUsage(float64, float64)    {}
func (m *stubMetrics) RequestCount() int64                  { return m.requests }
func (m *stubMetrics) CPUUsage() float64                    { return m.cpu }
func (m *stubMetrics) MemoryUsage() float64                 { return m.memory }

func newTestStore(t *testing.T) *DuckDBStore {
	t.Helper()
	client, err := duckdb.NewClient("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewDuckDBStore(client, &stubMetrics{requests: 7, cpu: 12.5, memory: 34.5})
	require.NoError(t, store.EnsureSchema(context.Background()))
	// EnsureSchema must be idempotent across restarts.
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

var testPreds = models.HorizonSet{10.0, 10.5, 11.0, 11.5}

func TestSavePredictionRejectsWeekend(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// 2024-06-08 is a Saturday.
	saved, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, saved)

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSavePredictionIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	saved, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, monday)
	require.NoError(t, err)
	require.True(t, saved)

	// Same key again: no second row, call reports false.
	saved, err = store.SavePrediction(ctx, "BBAS3.SA", testPreds, monday)
	require.NoError(t, err)
	require.False(t, saved)

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSavePredictionTargetDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// 2024-06-10 is a Monday; business-day offsets skip two weekends on
	// the way to the 15-day horizon.
	saved, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, saved)

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	require.Equal(t, "2024-06-10", r.PredictionDate)
	require.Equal(t, "2024-06-11", r.TargetDate1D)
	require.Equal(t, "2024-06-13", r.TargetDate3D)
	require.Equal(t, "2024-06-19", r.TargetDate7D)
	require.Equal(t, "2024-07-01", r.TargetDate15D)

	require.NotNil(t, r.PredictedClose1D)
	require.Equal(t, 10.0, *r.PredictedClose1D)
	require.Nil(t, r.RealClose1D)
}

func TestUpdateRealizedFillsMatchingSlots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Monday and Wednesday batches: Monday's 3d target and Wednesday's 1d
	// target both land on Thursday 2024-06-13.
	_, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = store.SavePrediction(ctx, "BBAS3.SA", testPreds, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, store.UpdateRealized(ctx, "BBAS3.SA", "2024-06-13", 12.34))

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Len(t, records, 2)

	monday, wednesday := records[0], records[1]
	require.NotNil(t, monday.RealClose3D)
	require.Equal(t, 12.34, *monday.RealClose3D)
	require.NotNil(t, wednesday.RealClose1D)
	require.Equal(t, 12.34, *wednesday.RealClose1D)

	// Slots with other target dates stay untouched.
	require.Nil(t, monday.RealClose1D)
	require.Nil(t, monday.RealClose7D)
	require.Nil(t, monday.RealClose15D)
	require.Nil(t, wednesday.RealClose3D)
}

func TestUpdateRealizedNoMatchIsNoop(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateRealized(ctx, "BBAS3.SA", "2024-06-13", 12.34))
}

func TestUpdateRealizedScopedToTicker(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, monday)
	require.NoError(t, err)
	_, err = store.SavePrediction(ctx, "PETR4.SA", testPreds, monday)
	require.NoError(t, err)

	require.NoError(t, store.UpdateRealized(ctx, "PETR4.SA", "2024-06-11", 33.0))

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0].RealClose1D)

	other, err := store.SelectPredictions(ctx, "PETR4.SA")
	require.NoError(t, err)
	require.NotNil(t, other[0].RealClose1D)
	require.Equal(t, 33.0, *other[0].RealClose1D)
}

func TestSelectPredictionsCoercesNonFinite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SavePrediction(ctx, "BBAS3.SA", testPreds, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Force non-finite values into stored columns.
	_, err = store.client.DB().ExecContext(ctx, `
		UPDATE model_performance
		SET predicted_close_1d = 'inf'::DOUBLE,
		    predicted_close_3d = '-inf'::DOUBLE,
		    real_close_7d = 'nan'::DOUBLE
		WHERE ticker = ?`, "BBAS3.SA")
	require.NoError(t, err)

	records, err := store.SelectPredictions(ctx, "BBAS3.SA")
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	require.Nil(t, r.PredictedClose1D)
	require.Nil(t, r.PredictedClose3D)
	require.Nil(t, r.RealClose7D)
	require.NotNil(t, r.PredictedClose7D)
}

func TestRecordMetricsSnapshotAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordMetricsSnapshot(ctx, testPreds, 0.25))
	require.NoError(t, store.RecordMetricsSnapshot(ctx, testPreds, 0.50))

	var count int64
	var requestCount int64
	var cpu, seconds float64
	row := store.client.DB().QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(request_count), MAX(cpu_usage), MAX(request_processing_seconds)
		FROM metrics_archive`)
	require.NoError(t, row.Scan(&count, &requestCount, &cpu, &seconds))
	require.EqualValues(t, 2, count)
	require.EqualValues(t, 7, requestCount)
	require.Equal(t, 12.5, cpu)
	require.Equal(t, 0.5, seconds)
}
