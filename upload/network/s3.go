package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultNumRetries = 3
	retryWait         = 5 * time.Second
)

// S3ClientParams configure an S3-backed Client.
type S3ClientParams struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// NumRetries is the retry count applied to each remote operation.
	// Zero means the default of 3.
	NumRetries int
}

type s3Client struct {
	client  *s3.Client
	retries uint
	logger  log.Logger
}

// NewS3Client creates a Client backed by the AWS S3 API. Credentials are
// loaded from the environment unless static credentials are provided.
func NewS3Client(ctx context.Context, params S3ClientParams, logger log.Logger) (Client, error) {
	cfg, err := loadAWSConfig(ctx, params, logger)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewS3ClientWithAPI(s3.NewFromConfig(*cfg), params, logger), nil
}

// NewS3ClientWithAPI creates a Client from an already constructed S3 API
// client, for callers that need custom endpoints or middleware.
func NewS3ClientWithAPI(client *s3.Client, params S3ClientParams, logger log.Logger) Client {
	retries := params.NumRetries
	if retries <= 0 {
		retries = defaultNumRetries
	}
	return &s3Client{
		client:  client,
		retries: uint(retries),
		logger:  logger,
	}
}

func (c *s3Client) CreateUpload(ctx context.Context, addr Address) (string, error) {
	var uploadID string
	err := retry.Times(c.retries).Wait(retryWait).TryWithAbort(func(attempt uint) (error, bool) {
		resp, err := c.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
			Bucket: aws.String(addr.Bucket),
			Key:    aws.String(addr.Key),
		})
		if err != nil {
			return fmt.Errorf("create multipart upload: %w", err), isPermanent(err)
		}
		if resp.UploadId == nil {
			return fmt.Errorf("create multipart upload: response has no upload ID"), true
		}
		uploadID = *resp.UploadId
		return nil, true
	})
	return uploadID, err
}

func (c *s3Client) UploadPart(ctx context.Context, up Upload, number int32, body []byte) (string, error) {
	var etag string
	err := retry.Times(c.retries).Wait(retryWait).TryWithAbort(func(attempt uint) (error, bool) {
		resp, err := c.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(up.Address.Bucket),
			Key:           aws.String(up.Address.Key),
			UploadId:      aws.String(up.ID),
			PartNumber:    aws.Int32(number),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
		})
		if err != nil {
			return fmt.Errorf("upload part %d: %w", number, err), isPermanent(err)
		}
		if resp.ETag == nil {
			return fmt.Errorf("upload part %d: response has no entity tag", number), true
		}
		etag = *resp.ETag
		return nil, true
	})
	return etag, err
}

func (c *s3Client) CompleteUpload(ctx context.Context, up Upload, parts []Part) (Object, error) {
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(p.Number),
			ETag:       aws.String(p.ETag),
		}
	}

	var object Object
	err := retry.Times(c.retries).Wait(retryWait).TryWithAbort(func(attempt uint) (error, bool) {
		resp, err := c.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
			Bucket:   aws.String(up.Address.Bucket),
			Key:      aws.String(up.Address.Key),
			UploadId: aws.String(up.ID),
			MultipartUpload: &types.CompletedMultipartUpload{
				Parts: completed,
			},
		})
		if err != nil {
			return fmt.Errorf("complete multipart upload: %w", err), isPermanent(err)
		}
		object = Object{
			Address:  up.Address,
			ETag:     aws.ToString(resp.ETag),
			Location: aws.ToString(resp.Location),
		}
		return nil, true
	})
	return object, err
}

func (c *s3Client) AbortUpload(ctx context.Context, up Upload) error {
	return retry.Times(c.retries).Wait(retryWait).TryWithAbort(func(attempt uint) (error, bool) {
		_, err := c.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(up.Address.Bucket),
			Key:      aws.String(up.Address.Key),
			UploadId: aws.String(up.ID),
		})
		if err != nil {
			// An upload that is already gone needs no abort.
			var nsu *types.NoSuchUpload
			if errors.As(err, &nsu) {
				c.logger.Debugf("abort: upload %s already gone", up.ID)
				return nil, true
			}
			return fmt.Errorf("abort multipart upload: %w", err), isPermanent(err)
		}
		return nil, true
	})
}

// isPermanent reports whether retrying the failed call cannot succeed.
func isPermanent(err error) bool {
	var nsu *types.NoSuchUpload
	if errors.As(err, &nsu) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "NoSuchBucket", "InvalidPart", "InvalidPartOrder", "EntityTooSmall", "EntityTooLarge":
			return true
		}
	}
	return false
}

func loadAWSConfig(ctx context.Context, params S3ClientParams, logger log.Logger) (*aws.Config, error) {
	if params.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
		config.WithHTTPClient(newHTTPClient(logger)),
	}

	if params.AccessKeyID != "" && params.SecretAccessKey != "" {
		logger.Debugf("using static aws credentials")
		opts = append(opts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %v", err)
	}

	return &cfg, nil
}

func newHTTPClient(logger log.Logger) aws.HTTPClient {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.ErrorHandler = func(resp *http.Response, err error, numTries int) (*http.Response, error) {
		if err != nil {
			logger.Debugf("http request failed after %d tries: %s", numTries, err)
		}
		return resp, err
	}
	return client.StandardClient()
}
