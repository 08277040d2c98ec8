package models

import (
	"fmt"
	"strings"
)

// SchemaError reports tabular input that cannot be turned into a model
// window: required columns missing or unparseable cells. User input fault.
type SchemaError struct {
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("input must contain the columns: %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// InsufficientDataError reports fewer input rows than the model window
// length. User input fault.
type InsufficientDataError struct {
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("input must contain at least %d rows, got %d", e.Required, e.Rows)
}

// ShapeError reports a mismatch between a window and the shape the loaded
// scaler or model was fitted for. Internal fault, not retryable.
type ShapeError struct {
	Want int
	Got  int
	Dim  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch on %s: want %d, got %d", e.Dim, e.Want, e.Got)
}
