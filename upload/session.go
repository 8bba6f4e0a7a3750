package upload

import (
	"context"
	"fmt"
	"sort"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"

	"github.com/objstream/go-s3upload/upload/network"
)

type sessionPhase int

const (
	phaseUnopened sessionPhase = iota
	phaseOpen
	phaseCompleting
	phaseCompleted
	phaseAborted
)

func (p sessionPhase) String() string {
	switch p {
	case phaseUnopened:
		return "unopened"
	case phaseOpen:
		return "open"
	case phaseCompleting:
		return "completing"
	case phaseCompleted:
		return "completed"
	case phaseAborted:
		return "aborted"
	}
	return "unknown"
}

// Session drives one multipart upload from creation to completion or abort.
// It owns the upload ID, the part buffer and the part number to entity tag
// record. A Session belongs to exactly one consumer and is not safe for
// concurrent use.
//
// The upload is created lazily on the first write, so constructing a Session
// that is never written to leaves nothing behind on the remote service.
type Session struct {
	client network.Client
	logger log.Logger
	addr   network.Address
	buf    *partBuffer

	id        string
	parts     []network.Part
	committed int64
	phase     sessionPhase
	object    network.Object
}

// NewSession creates a session writing to addr. The remote upload is not
// created until the first write.
func NewSession(client network.Client, addr network.Address, cfg Config, logger log.Logger) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		client: client,
		logger: logger,
		addr:   addr,
		buf:    newPartBuffer(cfg.MinPartSize, cfg.MaxPartSize),
	}
}

// Address returns the destination of this session.
func (s *Session) Address() network.Address {
	return s.addr
}

// Committed returns the total bytes of all successfully uploaded parts.
// Bytes still sitting in the part buffer are not counted.
func (s *Session) Committed() int64 {
	return s.committed
}

// PartCount returns the number of parts uploaded so far.
func (s *Session) PartCount() int {
	return len(s.parts)
}

// Completed reports whether the session reached its completed phase.
func (s *Session) Completed() bool {
	return s.phase == phaseCompleted
}

// Terminal reports whether the session is completed or aborted. No further
// operation is valid on a terminal session.
func (s *Session) Terminal() bool {
	return s.phase == phaseCompleted || s.phase == phaseAborted
}

// Write buffers p, uploading parts as the buffer fills. A payload larger
// than the remaining space of the current part is split across parts; the
// split points are byte offsets, so only byte-stream encodings should rely
// on this.
func (s *Session) Write(ctx context.Context, p []byte) error {
	switch s.phase {
	case phaseUnopened:
		if err := s.open(ctx); err != nil {
			return err
		}
	case phaseOpen:
	default:
		return s.phaseError()
	}

	for len(p) > 0 {
		if s.buf.append(p) {
			break
		}
		if n := s.buf.space(); n > 0 {
			s.buf.append(p[:n])
			p = p[n:]
		}
		if err := s.cutPart(ctx); err != nil {
			return err
		}
	}

	if s.buf.cutReady() {
		return s.cutPart(ctx)
	}
	return nil
}

// Complete uploads any remaining buffered bytes as the final part and
// finishes the upload. Completing an already completed session is a no-op
// that returns the same object descriptor. Completing a session that never
// received any bytes fails with ErrNoParts.
func (s *Session) Complete(ctx context.Context) (network.Object, error) {
	switch s.phase {
	case phaseCompleted:
		return s.object, nil
	case phaseAborted:
		return network.Object{}, s.phaseError()
	case phaseUnopened:
		return network.Object{}, fmt.Errorf("complete %s: %w", s.addr, ErrNoParts)
	}

	s.phase = phaseCompleting

	// The final part is exempt from the minimum size bound.
	if s.buf.len() > 0 {
		if err := s.cutPart(ctx); err != nil {
			return network.Object{}, err
		}
	}

	if len(s.parts) == 0 {
		s.Abort(ctx)
		return network.Object{}, fmt.Errorf("complete %s: %w", s.addr, ErrNoParts)
	}

	parts := make([]network.Part, len(s.parts))
	copy(parts, s.parts)
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })

	object, err := s.client.CompleteUpload(ctx, s.handle(), parts)
	if err != nil {
		s.Abort(ctx)
		return network.Object{}, fmt.Errorf("complete %s: %w", s.addr, err)
	}

	s.phase = phaseCompleted
	s.object = object
	s.logger.Debugf("completed upload %s: %d parts, %s", s.addr, len(parts), units.HumanSize(float64(s.committed)))
	return object, nil
}

// Abort discards the remote upload so the service does not retain an
// unreferenced one. It is best-effort: a failing abort is logged, not
// returned, because the session is already failing for another reason.
func (s *Session) Abort(ctx context.Context) {
	if s.phase != phaseOpen && s.phase != phaseCompleting {
		s.phase = phaseAborted
		return
	}
	s.phase = phaseAborted
	// The abort must go out even when the originating failure was a
	// cancellation, so it runs detached from the caller's cancel signal.
	if err := s.client.AbortUpload(context.WithoutCancel(ctx), s.handle()); err != nil {
		s.logger.Warnf("abort upload %s (id %s): %s", s.addr, s.id, err)
	}
}

func (s *Session) open(ctx context.Context) error {
	id, err := s.client.CreateUpload(ctx, s.addr)
	if err != nil {
		// Nothing was created remotely, so there is nothing to abort.
		s.phase = phaseAborted
		return fmt.Errorf("create upload %s: %w", s.addr, err)
	}
	s.id = id
	s.phase = phaseOpen
	s.logger.Debugf("created upload %s (id %s)", s.addr, id)
	return nil
}

func (s *Session) cutPart(ctx context.Context) error {
	payload := s.buf.take()
	if len(payload) == 0 {
		return nil
	}

	number := int32(len(s.parts)) + 1
	if number > network.MaxParts {
		s.Abort(ctx)
		return fmt.Errorf("upload %s: %w", s.addr, ErrTooManyParts)
	}

	etag, err := s.client.UploadPart(ctx, s.handle(), number, payload)
	if err != nil {
		s.Abort(ctx)
		return fmt.Errorf("upload part %d of %s: %w", number, s.addr, err)
	}

	s.parts = append(s.parts, network.Part{Number: number, ETag: etag})
	s.committed += int64(len(payload))
	s.logger.Debugf("uploaded part %d of %s (%s, %s total)",
		number, s.addr, units.HumanSize(float64(len(payload))), units.HumanSize(float64(s.committed)))
	return nil
}

func (s *Session) handle() network.Upload {
	return network.Upload{Address: s.addr, ID: s.id}
}

func (s *Session) phaseError() error {
	switch s.phase {
	case phaseCompleted:
		return fmt.Errorf("upload %s: %w", s.addr, ErrUploadCompleted)
	case phaseAborted:
		return fmt.Errorf("upload %s: %w", s.addr, ErrUploadAborted)
	default:
		return fmt.Errorf("upload %s: invalid phase %s", s.addr, s.phase)
	}
}
