package network

import (
	"context"
)

// Client is the set of remote operations a multipart upload consumes.
// Implementations own transport, authentication and retries; callers treat
// every method as a single opaque operation.
type Client interface {
	// CreateUpload starts a multipart upload at the given address and
	// returns the upload ID assigned by the service.
	CreateUpload(ctx context.Context, addr Address) (string, error)

	// UploadPart uploads one part and returns its entity tag.
	UploadPart(ctx context.Context, up Upload, number int32, body []byte) (string, error)

	// CompleteUpload finishes the upload from the given parts, which must be
	// sorted by part number.
	CompleteUpload(ctx context.Context, up Upload, parts []Part) (Object, error)

	// AbortUpload discards the upload and any parts stored for it.
	AbortUpload(ctx context.Context, up Upload) error
}
