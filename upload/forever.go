package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/objstream/go-s3upload/upload/encoder"
	"github.com/objstream/go-s3upload/upload/network"
)

// ForeverUploader streams an unbounded sequence of records across a series
// of remote objects. Whenever the committed bytes of the current upload
// reach Config.TargetSize, the upload is completed and the next record opens
// a new one at the next address from the iterator.
//
// Running out of addresses is fatal: there is no valid destination for
// further data, so the uploader latches ErrAddressesExhausted and refuses
// all further input.
//
// A ForeverUploader is not safe for concurrent use.
type ForeverUploader[T any] struct {
	client  network.Client
	enc     encoder.Encoder[T]
	addrs   AddressIterator
	cfg     Config
	logger  log.Logger
	session *Session
	scratch bytes.Buffer
	failed  error
}

// NewForeverUploader creates an uploader rotating across the addresses of
// addrs. Config.TargetSize must be set; without it no upload would ever
// complete.
func NewForeverUploader[T any](client network.Client, enc encoder.Encoder[T], addrs AddressIterator, cfg Config, logger log.Logger) (*ForeverUploader[T], error) {
	if cfg.TargetSize <= 0 {
		return nil, fmt.Errorf("target size must be set for rotating uploads")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &ForeverUploader[T]{
		client: client,
		enc:    enc,
		addrs:  addrs,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}, nil
}

// Push encodes one record into the current upload, rotating to the next
// address first if the previous upload was completed.
func (f *ForeverUploader[T]) Push(ctx context.Context, item T) error {
	if f.failed != nil {
		return f.failed
	}
	if f.session == nil || f.session.Completed() {
		if err := f.rotate(); err != nil {
			return err
		}
	}
	if f.session.Terminal() {
		return f.session.phaseError()
	}

	f.scratch.Reset()
	if err := f.enc.Encode(item, &f.scratch); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := f.session.Write(ctx, f.scratch.Bytes()); err != nil {
		return err
	}

	if f.session.Committed() >= f.cfg.TargetSize {
		f.logger.Debugf("target size reached for %s, rotating", f.session.Address())
		if _, err := f.finish(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close completes the current upload, if any. The uploader stays usable:
// the next Push opens a new upload at the next address.
func (f *ForeverUploader[T]) Close(ctx context.Context) (network.Object, error) {
	if f.failed != nil {
		return network.Object{}, f.failed
	}
	if f.session == nil {
		return network.Object{}, ErrNoParts
	}
	return f.finish(ctx)
}

// Committed returns the bytes committed to the current upload. It resets to
// zero after each rotation.
func (f *ForeverUploader[T]) Committed() int64 {
	if f.session == nil {
		return 0
	}
	return f.session.Committed()
}

// PartCount returns the number of parts uploaded to the current upload.
func (f *ForeverUploader[T]) PartCount() int {
	if f.session == nil {
		return 0
	}
	return f.session.PartCount()
}

// Address returns the destination of the current upload. It is the zero
// Address before the first push.
func (f *ForeverUploader[T]) Address() network.Address {
	if f.session == nil {
		return network.Address{}
	}
	return f.session.Address()
}

func (f *ForeverUploader[T]) rotate() error {
	addr, ok := f.addrs.Next()
	if !ok {
		f.failed = ErrAddressesExhausted
		return f.failed
	}
	f.session = NewSession(f.client, addr, f.cfg, f.logger)
	f.enc.Reset()
	f.logger.Debugf("next upload destination: %s", addr)
	return nil
}

func (f *ForeverUploader[T]) finish(ctx context.Context) (network.Object, error) {
	if !f.session.Completed() {
		f.scratch.Reset()
		if err := f.enc.Finalize(&f.scratch); err != nil {
			return network.Object{}, fmt.Errorf("finalize encoding: %w", err)
		}
		if f.scratch.Len() > 0 {
			if err := f.session.Write(ctx, f.scratch.Bytes()); err != nil {
				return network.Object{}, err
			}
		}
	}
	return f.session.Complete(ctx)
}
