// Package model loads and evaluates the trained forecasting network.
// The artifact is an exported set of layer weights; training happens
// elsewhere and the loaded network is immutable.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"StockCast/internal/domain/models"
)

// Artifact layout: an ordered list of layers. LSTM layers carry Keras
// weight shapes (kernel inputDim x 4*units, recurrent units x 4*units,
// bias 4*units, gate order i,f,c,o); the dense head carries
// kernel units x outputs and bias outputs.
type artifact struct {
	Version       int         `json:"version"`
	InputFeatures int         `json:"input_features"`
	Layers        []layerSpec `json:"layers"`
}

type layerSpec struct {
	Type            string      `json:"type"`
	Units           int         `json:"units"`
	ReturnSequences bool        `json:"return_sequences"`
	Kernel          [][]float64 `json:"kernel"`
	Recurrent       [][]float64 `json:"recurrent"`
	Bias            []float64   `json:"bias"`
}

type layer interface {
	forward(seq [][]float64) [][]float64
	outputDim() int
}

// Network is the loaded model. It holds no mutable state after Load and
// is safe for concurrent Predict calls.
type Network struct {
	inputDim int
	layers   []layer
	outputs  int
}

// Load reads the model artifact from path. A missing or inconsistent
// artifact is fatal: the process must not accept traffic without a model.
func Load(path string) (*Network, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if a.InputFeatures <= 0 {
		return nil, fmt.Errorf("model artifact: input_features must be positive")
	}
	if len(a.Layers) == 0 {
		return nil, fmt.Errorf("model artifact: no layers")
	}

	n := &Network{inputDim: a.InputFeatures}
	dim := a.InputFeatures
	for i, spec := range a.Layers {
		var l layer
		switch spec.Type {
		case "lstm":
			lstm, err := newLSTM(spec, dim)
			if err != nil {
				return nil, fmt.Errorf("model artifact layer %d: %w", i, err)
			}
			l = lstm
		case "dense":
			dense, err := newDense(spec, dim)
			if err != nil {
				return nil, fmt.Errorf("model artifact layer %d: %w", i, err)
			}
			l = dense
		default:
			return nil, fmt.Errorf("model artifact layer %d: unknown type %q", i, spec.Type)
		}
		n.layers = append(n.layers, l)
		dim = l.outputDim()
	}
	n.outputs = dim

	if n.outputs != len(models.Horizons) {
		return nil, fmt.Errorf("model artifact: head produces %d outputs, expected %d", n.outputs, len(models.Horizons))
	}
	return n, nil
}

// Outputs returns the width of the network head.
func (n *Network) Outputs() int { return n.outputs }

// Predict runs the forward pass over a (batch, steps, features) input and
// returns one row of normalized horizon outputs per batch element.
func (n *Network) Predict(batch [][][]float64) ([][]float64, error) {
	if len(batch) == 0 {
		return nil, &models.ShapeError{Dim: "batch", Want: 1, Got: 0}
	}
	out := make([][]float64, len(batch))
	for i, seq := range batch {
		if len(seq) == 0 {
			return nil, &models.ShapeError{Dim: "steps", Want: 1, Got: 0}
		}
		for _, row := range seq {
			if len(row) != n.inputDim {
				return nil, &models.ShapeError{Dim: "features", Want: n.inputDim, Got: len(row)}
			}
		}
		cur := seq
		for _, l := range n.layers {
			cur = l.forward(cur)
		}
		// The head leaves a single row of horizon outputs.
		out[i] = cur[len(cur)-1]
	}
	return out, nil
}

type lstmLayer struct {
	units           int
	inputDim        int
	returnSequences bool
	kernel          [][]float64 // inputDim x 4*units
	recurrent       [][]float64 // units x 4*units
	bias            []float64   // 4*units
}

func newLSTM(spec layerSpec, inputDim int) (*lstmLayer, error) {
	if spec.Units <= 0 {
		return nil, fmt.Errorf("lstm units must be positive")
	}
	if err := checkMatrix(spec.Kernel, inputDim, 4*spec.Units, "kernel"); err != nil {
		return nil, err
	}
	if err := checkMatrix(spec.Recurrent, spec.Units, 4*spec.Units, "recurrent"); err != nil {
		return nil, err
	}
	if len(spec.Bias) != 4*spec.Units {
		return nil, fmt.Errorf("lstm bias must be %d wide, got %d", 4*spec.Units, len(spec.Bias))
	}
	return &lstmLayer{
		units:           spec.Units,
		inputDim:        inputDim,
		returnSequences: spec.ReturnSequences,
		kernel:          spec.Kernel,
		recurrent:       spec.Recurrent,
		bias:            spec.Bias,
	}, nil
}

func (l *lstmLayer) outputDim() int { return l.units }

func (l *lstmLayer) forward(seq [][]float64) [][]float64 {
	h := make([]float64, l.units)
	c := make([]float64, l.units)
	var outputs [][]float64
	if l.returnSequences {
		outputs = make([][]float64, 0, len(seq))
	}

	z := make([]float64, 4*l.units)
	for _, x := range seq {
		// z = x*W + h*U + b
		copy(z, l.bias)
		for i, xv := range x {
			if xv == 0 {
				continue
			}
			row := l.kernel[i]
			for k, w := range row {
				z[k] += xv * w
			}
		}
		for i, hv := range h {
			if hv == 0 {
				continue
			}
			row := l.recurrent[i]
			for k, w := range row {
				z[k] += hv * w
			}
		}

		next := make([]float64, l.units)
		for u := 0; u < l.units; u++ {
			i := sigmoid(z[u])
			f := sigmoid(z[l.units+u])
			g := math.Tanh(z[2*l.units+u])
			o := sigmoid(z[3*l.units+u])
			c[u] = f*c[u] + i*g
			next[u] = o * math.Tanh(c[u])
		}
		h = next
		if l.returnSequences {
			outputs = append(outputs, append([]float64(nil), h...))
		}
	}

	if l.returnSequences {
		return outputs
	}
	return [][]float64{h}
}

type denseLayer struct {
	units    int
	inputDim int
	kernel   [][]float64 // inputDim x units
	bias     []float64
}

func newDense(spec layerSpec, inputDim int) (*denseLayer, error) {
	if spec.Units <= 0 {
		return nil, fmt.Errorf("dense units must be positive")
	}
	if err := checkMatrix(spec.Kernel, inputDim, spec.Units, "kernel"); err != nil {
		return nil, err
	}
	if len(spec.Bias) != spec.Units {
		return nil, fmt.Errorf("dense bias must be %d wide, got %d", spec.Units, len(spec.Bias))
	}
	return &denseLayer{units: spec.Units, inputDim: inputDim, kernel: spec.Kernel, bias: spec.Bias}, nil
}

func (l *denseLayer) outputDim() int { return l.units }

func (l *denseLayer) forward(seq [][]float64) [][]float64 {
	out := make([][]float64, len(seq))
	for r, x := range seq {
		y := append([]float64(nil), l.bias...)
		for i, xv := range x {
			row := l.kernel[i]
			for k, w := range row {
				y[k] += xv * w
			}
		}
		out[r] = y
	}
	return out
}

func checkMatrix(m [][]float64, rows, cols int, name string) error {
	if len(m) != rows {
		return fmt.Errorf("%s must have %d rows, got %d", name, rows, len(m))
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s row %d must be %d wide, got %d", name, i, cols, len(row))
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
