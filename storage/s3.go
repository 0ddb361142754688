package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/aoss-provisioner/awsauth"
)

// S3Backend reads objects from Amazon S3 or a compatible service.
// URI format: s3://bucket/key?region=us-west-2&endpoint=custom.s3.com
type S3Backend struct {
	session *session.Session
	region  string
	log     *slog.Logger

	// NewClient builds the client for one location. Tests replace it.
	NewClient func(region, endpoint string) s3iface.S3API
}

// NewS3Backend creates an S3 backend on the identity's session.
func NewS3Backend(identity *awsauth.Identity, log *slog.Logger) *S3Backend {
	b := &S3Backend{
		session: identity.Session,
		region:  identity.Region,
		log:     log,
	}
	b.NewClient = b.newClient
	return b
}

// newClient clears any endpoint override inherited from the session unless
// the location names one.
func (b *S3Backend) newClient(region, endpoint string) s3iface.S3API {
	cfg := aws.NewConfig().WithRegion(region).WithEndpoint(endpoint)
	if endpoint != "" {
		cfg = cfg.WithS3ForcePathStyle(true)
	}
	return s3.New(b.session, cfg)
}

// Fetch retrieves the object named by u. Returns ErrNotFound if the bucket
// or key does not exist.
func (b *S3Backend) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	start := time.Now()
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: expected s3://bucket/key, got %s", ErrUnsupportedLocation, u.Redacted())
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = b.region
	}

	result, err := b.NewClient(region, query.Get("endpoint")).GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			b.log.Debug("Content not found in S3",
				slog.String("bucket", bucket),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
		}

		b.log.Error("Failed to get object from S3",
			slog.String("bucket", bucket),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	b.log.Debug("Fetched content from S3",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}
