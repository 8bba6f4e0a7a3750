package upload

import "bytes"

// partBuffer accumulates the bytes of the part currently being assembled.
// It enforces the part size bounds: append refuses writes that would push
// the buffer past the maximum, and cutReady reports when the minimum has
// been reached. The underlying storage is reused across parts.
type partBuffer struct {
	buf bytes.Buffer
	min int64
	max int64
}

func newPartBuffer(min, max int64) *partBuffer {
	b := &partBuffer{min: min, max: max}
	b.buf.Grow(int(min))
	return b
}

// append adds p to the buffer. It reports false, without writing anything,
// if accepting p would exceed the maximum part size; the caller must cut the
// current part and retry.
func (b *partBuffer) append(p []byte) bool {
	if int64(b.buf.Len())+int64(len(p)) > b.max {
		return false
	}
	b.buf.Write(p)
	return true
}

// space returns how many more bytes the buffer accepts before hitting the
// maximum part size.
func (b *partBuffer) space() int64 {
	return b.max - int64(b.buf.Len())
}

// cutReady reports whether the buffer holds enough bytes to be uploaded as a
// non-final part.
func (b *partBuffer) cutReady() bool {
	return int64(b.buf.Len()) >= b.min
}

func (b *partBuffer) len() int64 {
	return int64(b.buf.Len())
}

// take returns the buffered bytes and resets the buffer for the next part.
// The returned slice is only valid until the next append.
func (b *partBuffer) take() []byte {
	p := b.buf.Bytes()
	b.buf.Reset()
	return p
}
