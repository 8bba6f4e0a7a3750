package encoder

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd wraps another encoder in a zstd stream. One object is one stream;
// Finalize closes the frame and Reset starts a fresh one for the next
// object. Each record is flushed to its own compressed block so the output
// is append-only and deterministic per record.
type Zstd[T any] struct {
	inner Encoder[T]
	raw   bytes.Buffer
	out   bytes.Buffer
	zw    *zstd.Encoder
}

// NewZstd wraps inner in a zstd compression stream.
func NewZstd[T any](inner Encoder[T], opts ...zstd.EOption) (*Zstd[T], error) {
	e := &Zstd[T]{inner: inner}
	zw, err := zstd.NewWriter(&e.out, opts...)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	e.zw = zw
	return e, nil
}

func (e *Zstd[T]) Encode(item T, buf *bytes.Buffer) error {
	e.raw.Reset()
	if err := e.inner.Encode(item, &e.raw); err != nil {
		return err
	}
	if _, err := e.zw.Write(e.raw.Bytes()); err != nil {
		return fmt.Errorf("compress record: %w", err)
	}
	if err := e.zw.Flush(); err != nil {
		return fmt.Errorf("flush zstd block: %w", err)
	}
	return e.drain(buf)
}

func (e *Zstd[T]) Finalize(buf *bytes.Buffer) error {
	e.raw.Reset()
	if err := e.inner.Finalize(&e.raw); err != nil {
		return err
	}
	if e.raw.Len() > 0 {
		if _, err := e.zw.Write(e.raw.Bytes()); err != nil {
			return fmt.Errorf("compress trailer: %w", err)
		}
	}
	if err := e.zw.Close(); err != nil {
		return fmt.Errorf("close zstd stream: %w", err)
	}
	return e.drain(buf)
}

func (e *Zstd[T]) Reset() {
	e.inner.Reset()
	e.out.Reset()
	e.zw.Reset(&e.out)
}

func (e *Zstd[T]) drain(buf *bytes.Buffer) error {
	if _, err := buf.Write(e.out.Bytes()); err != nil {
		return err
	}
	e.out.Reset()
	return nil
}
