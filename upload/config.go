package upload

import (
	"fmt"

	"github.com/docker/go-units"

	"github.com/objstream/go-s3upload/upload/network"
)

// Config tunes part sizing and completion of an upload.
type Config struct {
	// TargetSize is the byte threshold at which an upload is completed.
	// For Uploader zero means "upload until Flush or Close"; setting it
	// turns the uploader into a hard ceiling that stops accepting input
	// once reached. For ForeverUploader it is mandatory and triggers
	// rotation to the next address.
	TargetSize int64

	// MinPartSize is the size at which a buffered part is uploaded.
	// Defaults to the S3 minimum of 5 MiB. Smaller values are only valid
	// against S3-compatible endpoints that relax the protocol minimum.
	MinPartSize int64

	// MaxPartSize is the hard upper bound of a single part.
	// Defaults to the S3 maximum of 5 GiB.
	MaxPartSize int64
}

func (c Config) withDefaults() Config {
	if c.MinPartSize <= 0 {
		c.MinPartSize = network.MinPartSize
	}
	if c.MaxPartSize <= 0 {
		c.MaxPartSize = network.MaxPartSize
	}
	return c
}

func (c Config) validate() error {
	c = c.withDefaults()
	if c.MaxPartSize > network.MaxPartSize {
		return fmt.Errorf("max part size %s exceeds the protocol limit of %s",
			units.HumanSize(float64(c.MaxPartSize)), units.HumanSize(float64(network.MaxPartSize)))
	}
	if c.MinPartSize > c.MaxPartSize {
		return fmt.Errorf("min part size %s exceeds max part size %s",
			units.HumanSize(float64(c.MinPartSize)), units.HumanSize(float64(c.MaxPartSize)))
	}
	return nil
}

// ParseSize converts a human-readable size such as "5MiB" or "1GB" to bytes.
func ParseSize(s string) (int64, error) {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	return size, nil
}
