package encoder

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV encodes records as CSV rows via a caller-supplied row function.
// The header, if any, is written before the first record of an object.
type CSV[T any] struct {
	header []string
	row    func(T) []string

	// RepeatHeader controls whether Reset rearms the header for the next
	// object.
	RepeatHeader bool

	wroteHeader bool
}

// NewCSV creates a CSV encoder. header may be nil for headerless output.
func NewCSV[T any](header []string, row func(T) []string) *CSV[T] {
	return &CSV[T]{
		header:       header,
		row:          row,
		RepeatHeader: true,
	}
}

func (e *CSV[T]) Encode(item T, buf *bytes.Buffer) error {
	w := csv.NewWriter(buf)
	if len(e.header) > 0 && !e.wroteHeader {
		if err := w.Write(e.header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		e.wroteHeader = true
	}
	if err := w.Write(e.row(item)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (e *CSV[T]) Finalize(buf *bytes.Buffer) error {
	return nil
}

func (e *CSV[T]) Reset() {
	if e.RepeatHeader {
		e.wroteHeader = false
	}
}
