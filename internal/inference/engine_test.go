package inference

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"StockCast/internal/domain/models"
	"StockCast/internal/scaler"
)

// stubModel returns fixed normalized outputs regardless of input.
type stubModel struct {
	out  []float64
	err  error
	seen [][][]float64
}

func (m *stubModel) Predict(batch [][][]float64) ([][]float64, error) {
	m.seen = batch
	if m.err != nil {
		return nil, m.err
	}
	return [][]float64{m.out}, nil
}

func testScaler(t *testing.T) *scaler.Scaler {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"features": []string{"Open", "High", "Low", "Volume", "Close"},
		"scale":    []float64{0.01, 0.01, 0.01, 1e-6, 0.01},
		"min":      []float64{0, 0, 0, 0, 0},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scaler.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := scaler.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func window(rows int) *models.Window {
	w := &models.Window{Rows: make([][]float64, rows)}
	for i := range w.Rows {
		w.Rows[i] = []float64{10, 12, 9, 500000, 11}
	}
	return w
}

func TestPredictInvertsEachHorizon(t *testing.T) {
	m := &stubModel{out: []float64{0.10, 0.20, 0.30, 0.40}}
	e := NewEngine(testScaler(t), m)

	set, err := e.Predict(window(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// scale_close = 0.01, so inverse of 0.10 is 10.0 and so on.
	want := models.HorizonSet{10, 20, 30, 40}
	for i := range want {
		if math.Abs(set[i]-want[i]) > 1e-9 {
			t.Errorf("horizon %d: got %v, want %v", models.Horizons[i], set[i], want[i])
		}
	}

	// The model must see the batch dimension.
	if len(m.seen) != 1 || len(m.seen[0]) != 60 || len(m.seen[0][0]) != 5 {
		t.Fatalf("model saw unexpected shape")
	}
}

func TestPredictRejectsMalformedWindow(t *testing.T) {
	m := &stubModel{out: []float64{0.1, 0.2, 0.3, 0.4}}
	e := NewEngine(testScaler(t), m)

	_, err := e.Predict(&models.Window{Rows: [][]float64{{1, 2}}})
	var shapeErr *models.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}

func TestPredictRejectsWrongHorizonCount(t *testing.T) {
	m := &stubModel{out: []float64{0.1, 0.2}}
	e := NewEngine(testScaler(t), m)

	_, err := e.Predict(window(60))
	var shapeErr *models.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}
