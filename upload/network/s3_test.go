package network

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Client_RequiresRegion(t *testing.T) {
	_, err := NewS3Client(context.Background(), S3ClientParams{}, log.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "plain transport error is retried",
			err:  fmt.Errorf("connection reset"),
			want: false,
		},
		{
			name: "throttling is retried",
			err:  &smithy.GenericAPIError{Code: "SlowDown"},
			want: false,
		},
		{
			name: "access denied is permanent",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: true,
		},
		{
			name: "missing bucket is permanent",
			err:  &smithy.GenericAPIError{Code: "NoSuchBucket"},
			want: true,
		},
		{
			name: "missing upload is permanent",
			err:  fmt.Errorf("wrapped: %w", &types.NoSuchUpload{}),
			want: true,
		},
		{
			name: "invalid part order is permanent",
			err:  &smithy.GenericAPIError{Code: "InvalidPartOrder"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}

func TestAddress_String(t *testing.T) {
	addr := Address{Bucket: "logs", Key: "2024/05/17/run.jsonl"}
	assert.Equal(t, "s3://logs/2024/05/17/run.jsonl", addr.String())
}
