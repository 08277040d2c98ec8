// Package sequence turns tabular OHLCV input into the fixed-length
// window the model consumes.
package sequence

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"StockCast/internal/domain/models"
)

// Builder windows raw rows to the model's expected input length. Input
// longer than the window keeps only the most recent rows; shorter input
// is rejected.
type Builder struct {
	seqLength int
}

func NewBuilder(seqLength int) *Builder {
	return &Builder{seqLength: seqLength}
}

// SeqLength returns the configured window length.
func (b *Builder) SeqLength() int { return b.seqLength }

// FromCSV parses a CSV stream with a header row and builds a window from
// the required feature columns. Header matching is case and whitespace
// insensitive; extra columns are ignored.
func (b *Builder) FromCSV(r io.Reader) (*models.Window, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &models.SchemaError{Reason: fmt.Sprintf("cannot read CSV header: %v", err)}
	}

	idx, missing := columnIndexes(header)
	if len(missing) > 0 {
		return nil, &models.SchemaError{Missing: missing}
	}

	var rows [][]float64
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.SchemaError{Reason: fmt.Sprintf("malformed CSV at line %d: %v", line, err)}
		}
		row := make([]float64, len(models.FeatureColumns))
		for j, col := range idx {
			if col >= len(record) {
				return nil, &models.SchemaError{Reason: fmt.Sprintf("line %d: missing value for column %s", line, models.FeatureColumns[j])}
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, &models.SchemaError{Reason: fmt.Sprintf("line %d: column %s is not numeric: %q", line, models.FeatureColumns[j], record[col])}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return b.window(rows)
}

// FromRows builds a window from feed-sourced OHLCV rows, which must be
// chronological (oldest first).
func (b *Builder) FromRows(rows []models.OHLCVRow) (*models.Window, error) {
	data := make([][]float64, len(rows))
	for i, r := range rows {
		data[i] = []float64{r.Open, r.High, r.Low, r.Volume, r.Close}
	}
	return b.window(data)
}

// FromColumns builds a window from parallel per-feature series in
// FeatureColumns order. All series must have equal length.
func (b *Builder) FromColumns(open, high, low, volume, closes []float64) (*models.Window, error) {
	n := len(open)
	for _, col := range [][]float64{high, low, volume, closes} {
		if len(col) != n {
			return nil, &models.SchemaError{Reason: "price columns must all have the same length"}
		}
	}
	data := make([][]float64, n)
	for i := 0; i < n; i++ {
		data[i] = []float64{open[i], high[i], low[i], volume[i], closes[i]}
	}
	return b.window(data)
}

func (b *Builder) window(rows [][]float64) (*models.Window, error) {
	if len(rows) < b.seqLength {
		return nil, &models.InsufficientDataError{Rows: len(rows), Required: b.seqLength}
	}
	// Most recent seqLength rows, original order preserved.
	return &models.Window{Rows: rows[len(rows)-b.seqLength:]}, nil
}

// columnIndexes resolves each required feature column to its position in
// the header. Returns the positions and the list of missing columns.
func columnIndexes(header []string) ([]int, []string) {
	idx := make([]int, len(models.FeatureColumns))
	var missing []string
	for j, name := range models.FeatureColumns {
		found := -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				found = i
				break
			}
		}
		if found < 0 {
			missing = append(missing, name)
			continue
		}
		idx[j] = found
	}
	return idx, missing
}
