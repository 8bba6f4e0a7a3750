// Package encoder defines how domain records become bytes in an upload.
// Encoders append to the buffer they are handed and never touch what is
// already there, so the upload core stays free to cut parts at any point.
package encoder

import "bytes"

// Encoder turns one record into appended bytes. Implementations may be
// stateful (a header written once, a compression stream), which is why an
// encoder instance belongs to exactly one consumer.
type Encoder[T any] interface {
	// Encode appends the encoding of item to buf.
	Encode(item T, buf *bytes.Buffer) error

	// Finalize appends any trailing bytes the format needs to be valid,
	// such as closing a compression frame. It is a no-op for delimited
	// formats.
	Finalize(buf *bytes.Buffer) error

	// Reset prepares the encoder for a new object. What carries over is
	// the encoder's own policy: a CSV encoder may rearm its header, a
	// compressor starts a fresh stream.
	Reset()
}
