package model

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"StockCast/internal/domain/models"
)

func writeModel(t *testing.T, a map[string]any) string {
	t.Helper()
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// zeros builds an r x c matrix of zero weights.
func zeros(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := range m {
		m[i] = make([]float64, c)
	}
	return m
}

func tinyModel(t *testing.T) *Network {
	t.Helper()
	// One LSTM unit over 2 features, dense head of 4.
	dense := zeros(1, 4)
	dense[0] = []float64{1, 2, 3, 4}
	path := writeModel(t, map[string]any{
		"version":        1,
		"input_features": 2,
		"layers": []map[string]any{
			{
				"type":      "lstm",
				"units":     1,
				"kernel":    [][]float64{{0.5, 0.5, 0.5, 0.5}, {0.5, 0.5, 0.5, 0.5}},
				"recurrent": [][]float64{{0.1, 0.1, 0.1, 0.1}},
				"bias":      []float64{0, 0, 0, 0},
			},
			{
				"type":   "dense",
				"units":  4,
				"kernel": dense,
				"bias":   []float64{0.1, 0.1, 0.1, 0.1},
			},
		},
	})
	n, err := Load(path)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	return n
}

func TestLoadRejectsBrokenArtifacts(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing artifact")
	}

	// Head width must match the horizon count.
	path := writeModel(t, map[string]any{
		"version":        1,
		"input_features": 2,
		"layers": []map[string]any{
			{"type": "dense", "units": 3, "kernel": zeros(2, 3), "bias": []float64{0, 0, 0}},
		},
	})
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for wrong head width")
	}

	// Weight shape mismatch.
	path = writeModel(t, map[string]any{
		"version":        1,
		"input_features": 2,
		"layers": []map[string]any{
			{"type": "lstm", "units": 1, "kernel": zeros(3, 4), "recurrent": zeros(1, 4), "bias": []float64{0, 0, 0, 0}},
		},
	})
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for kernel shape mismatch")
	}
}

func TestPredictShape(t *testing.T) {
	n := tinyModel(t)
	batch := [][][]float64{{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}}

	out, err := n.Predict(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || len(out[0]) != 4 {
		t.Fatalf("unexpected output shape %v", out)
	}
	for i, v := range out[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("output %d is not finite: %v", i, v)
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	n := tinyModel(t)
	batch := [][][]float64{{{0.1, 0.2}, {0.3, 0.4}}}

	a, err := n.Predict(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := n.Predict(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("output %d differs between identical calls", i)
		}
	}
}

func TestPredictFeatureMismatch(t *testing.T) {
	n := tinyModel(t)
	_, err := n.Predict([][][]float64{{{0.1, 0.2, 0.3}}})

	var shapeErr *models.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}
