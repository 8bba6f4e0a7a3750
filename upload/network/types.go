package network

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

// Part size and count limits of the S3 multipart upload protocol.
// Every part except the last must be at least MinPartSize bytes, no part may
// exceed MaxPartSize bytes, and an upload holds at most MaxParts parts.
const (
	MinPartSize int64 = manager.MinUploadPartSize
	MaxPartSize int64 = 5 * 1024 * 1024 * 1024
	MaxParts    int32 = manager.MaxUploadParts
)

// Address identifies exactly one remote object as a bucket and key pair.
type Address struct {
	Bucket string
	Key    string
}

func (a Address) String() string {
	return fmt.Sprintf("s3://%s/%s", a.Bucket, a.Key)
}

// Upload is the handle of one in-progress multipart upload: the destination
// address plus the upload ID assigned by the service on creation.
type Upload struct {
	Address Address
	ID      string
}

// Part records one uploaded part: its 1-based sequence number and the entity
// tag returned by the service, both required to complete the upload.
type Part struct {
	Number int32
	ETag   string
}

// Object describes the remote object produced by a completed upload.
type Object struct {
	Address  Address
	ETag     string
	Location string
}
