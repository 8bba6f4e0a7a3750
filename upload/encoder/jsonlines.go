package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONLines encodes records as one JSON document per line.
type JSONLines[T any] struct{}

// NewJSONLines creates an encoder writing one JSON document per record.
func NewJSONLines[T any]() *JSONLines[T] {
	return &JSONLines[T]{}
}

func (e *JSONLines[T]) Encode(item T, buf *bytes.Buffer) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	buf.Grow(len(data) + 1)
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}

func (e *JSONLines[T]) Finalize(buf *bytes.Buffer) error {
	return nil
}

func (e *JSONLines[T]) Reset() {}
