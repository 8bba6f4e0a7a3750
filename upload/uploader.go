package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/objstream/go-s3upload/upload/encoder"
	"github.com/objstream/go-s3upload/upload/network"
)

// Uploader streams a bounded sequence of records into one remote object.
// Records are pushed one at a time; the uploader encodes, buffers and cuts
// parts without the caller ever seeing part numbers or entity tags.
//
// If Config.TargetSize is set, the upload is completed as soon as the
// committed bytes reach it and every later Push fails with
// ErrUploadCompleted. That makes a target size a hard safety ceiling, not a
// rotation trigger; use ForeverUploader to keep writing past it.
//
// An Uploader is not safe for concurrent use.
type Uploader[T any] struct {
	client  network.Client
	enc     encoder.Encoder[T]
	cfg     Config
	logger  log.Logger
	session *Session
	scratch bytes.Buffer
	closed  bool
}

// NewUploader creates an uploader writing to addr. The remote upload is
// created on the first Push.
func NewUploader[T any](client network.Client, enc encoder.Encoder[T], addr network.Address, cfg Config, logger log.Logger) (*Uploader[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Uploader[T]{
		client:  client,
		enc:     enc,
		cfg:     cfg,
		logger:  logger,
		session: NewSession(client, addr, cfg, logger),
	}, nil
}

// Push encodes one record into the upload. It fails with ErrUploadCompleted
// or ErrUploadAborted once the session is terminal; no remote call is made
// in that case.
func (u *Uploader[T]) Push(ctx context.Context, item T) error {
	if u.closed {
		return ErrUploaderClosed
	}
	if u.session.Terminal() {
		return u.session.phaseError()
	}

	u.scratch.Reset()
	if err := u.enc.Encode(item, &u.scratch); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := u.session.Write(ctx, u.scratch.Bytes()); err != nil {
		return err
	}

	if u.cfg.TargetSize > 0 && u.session.Committed() >= u.cfg.TargetSize {
		u.logger.Debugf("target size reached for %s, completing upload", u.session.Address())
		_, err := u.finish(ctx)
		return err
	}
	return nil
}

// Flush cuts any buffered bytes as the final part and completes the upload.
// Flushing an already completed upload is a no-op returning the same object
// descriptor.
func (u *Uploader[T]) Flush(ctx context.Context) (network.Object, error) {
	if u.closed {
		return network.Object{}, ErrUploaderClosed
	}
	return u.finish(ctx)
}

// Close completes the upload like Flush and releases the uploader; every
// later operation fails with ErrUploaderClosed.
func (u *Uploader[T]) Close(ctx context.Context) (network.Object, error) {
	if u.closed {
		return network.Object{}, ErrUploaderClosed
	}
	object, err := u.finish(ctx)
	u.closed = true
	return object, err
}

// Abort discards the current upload without completing it.
func (u *Uploader[T]) Abort(ctx context.Context) {
	u.session.Abort(ctx)
}

// StartNewUpload rebinds the uploader to a fresh session at addr, clearing
// the completed or aborted state left by the previous upload. It fails with
// ErrUploadActive while the current session is still open.
func (u *Uploader[T]) StartNewUpload(addr network.Address) error {
	if u.closed {
		return ErrUploaderClosed
	}
	if u.session.phase == phaseOpen || u.session.phase == phaseCompleting {
		return fmt.Errorf("upload %s: %w", u.session.Address(), ErrUploadActive)
	}
	u.session = NewSession(u.client, addr, u.cfg, u.logger)
	u.enc.Reset()
	return nil
}

// Committed returns the bytes committed to the current upload so far.
func (u *Uploader[T]) Committed() int64 {
	return u.session.Committed()
}

// PartCount returns the number of parts uploaded so far.
func (u *Uploader[T]) PartCount() int {
	return u.session.PartCount()
}

// Address returns the destination of the current upload.
func (u *Uploader[T]) Address() network.Address {
	return u.session.Address()
}

func (u *Uploader[T]) finish(ctx context.Context) (network.Object, error) {
	if !u.session.Completed() {
		u.scratch.Reset()
		if err := u.enc.Finalize(&u.scratch); err != nil {
			return network.Object{}, fmt.Errorf("finalize encoding: %w", err)
		}
		if u.scratch.Len() > 0 {
			if err := u.session.Write(ctx, u.scratch.Bytes()); err != nil {
				return network.Object{}, err
			}
		}
	}
	return u.session.Complete(ctx)
}
