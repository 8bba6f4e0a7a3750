package encoder

import "bytes"

// Lines encodes string records delimited by a newline character.
type Lines struct {
	// Header is written before the first record of an object. Empty means
	// no header.
	Header string

	// RepeatHeader controls whether Reset rearms the header for the next
	// object. When false the header is only ever written once, even across
	// rotated uploads.
	RepeatHeader bool

	wroteHeader bool
}

// NewLines creates an encoder for newline-delimited records.
func NewLines() *Lines {
	return &Lines{}
}

func (e *Lines) Encode(item string, buf *bytes.Buffer) error {
	if e.Header != "" && !e.wroteHeader {
		buf.WriteString(e.Header)
		buf.WriteByte('\n')
		e.wroteHeader = true
	}
	buf.WriteString(item)
	buf.WriteByte('\n')
	return nil
}

func (e *Lines) Finalize(buf *bytes.Buffer) error {
	return nil
}

func (e *Lines) Reset() {
	if e.RepeatHeader {
		e.wroteHeader = false
	}
}
