package upload

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/objstream/go-s3upload/upload/network"
)

// AddressIterator supplies the destinations a ForeverUploader rotates
// across. Next reports false when no more destinations exist.
type AddressIterator interface {
	Next() (network.Address, bool)
}

type staticAddresses struct {
	addrs []network.Address
}

// StaticAddresses iterates over a fixed list of destinations.
func StaticAddresses(addrs ...network.Address) AddressIterator {
	return &staticAddresses{addrs: addrs}
}

func (s *staticAddresses) Next() (network.Address, bool) {
	if len(s.addrs) == 0 {
		return network.Address{}, false
	}
	addr := s.addrs[0]
	s.addrs = s.addrs[1:]
	return addr, true
}

// TimestampedKeys generates keys of the form
// <prefix>/<time layout>/<uuid><suffix> in a fixed bucket. It never runs
// out, which makes it the natural companion of ForeverUploader.
type TimestampedKeys struct {
	Bucket string
	// Prefix is an optional directory-style prefix.
	Prefix string
	// Layout is a time layout string for the key's time component.
	// Defaults to "2006/01/02".
	Layout string
	// Suffix is an optional file extension such as ".jsonl".
	Suffix string

	// now is swapped in tests.
	now func() time.Time
}

func (t *TimestampedKeys) Next() (network.Address, bool) {
	layout := t.Layout
	if layout == "" {
		layout = "2006/01/02"
	}
	now := time.Now
	if t.now != nil {
		now = t.now
	}

	var b strings.Builder
	if t.Prefix != "" {
		b.WriteString(strings.TrimSuffix(t.Prefix, "/"))
		b.WriteByte('/')
	}
	b.WriteString(now().UTC().Format(layout))
	b.WriteByte('/')
	b.WriteString(uuid.New().String())
	b.WriteString(t.Suffix)

	return network.Address{Bucket: t.Bucket, Key: b.String()}, true
}
