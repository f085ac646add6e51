// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/metrics"
)

// S3API is the subset of the S3 client used by [S3Store].
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// breakerName labels the S3 breaker in logs and metrics.
const breakerName = "s3-assets"

// S3Store keeps assets in an S3-compatible bucket (AWS, Cloudflare R2, MinIO).
// Calls pass through a circuit breaker so an unreachable bucket fails fast.
type S3Store struct {
	client  S3API
	bucket  string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewS3Client builds an S3 client from the default AWS credential chain.
// A non-empty endpoint switches to path-style addressing for R2 and MinIO.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("cover: load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	}), nil
}

// NewS3Store wraps client for bucket.
func NewS3Store(client S3API, bucket string, logger *slog.Logger) *S3Store {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		// Five straight failures open the circuit.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &S3Store{client: client, bucket: bucket, breaker: breaker}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// execute runs fn through the breaker and maps every failure to STORAGE_ERROR.
func (s *S3Store) execute(action, name string, fn func() error) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if err != nil {
		return apperr.Storage(fmt.Errorf("cover: s3 %s %s: %w", action, name, err))
	}
	return nil
}

// Put uploads the asset with its content type and a long-lived cache header.
// Names are never reused, so the object is immutable.
func (s *S3Store) Put(ctx context.Context, name string, body []byte, contentType string) error {
	if !ValidName(name) {
		return apperr.Storage(fmt.Errorf("cover: invalid asset name %q", name))
	}

	return s.execute(OpPut, name, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(name),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			ContentType:   aws.String(contentType),
			CacheControl:  aws.String("public, max-age=31536000, immutable"),
		})
		return err
	})
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return apperr.Storage(fmt.Errorf("cover: invalid asset name %q", name))
	}

	return s.execute(OpDelete, name, func() error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(name),
		})
		return err
	})
}

// Exists issues a HEAD request. A not-found answer is a successful call.
func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	if !ValidName(name) {
		return false, nil
	}

	exists := false
	err := s.execute(OpExists, name, func() error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(name),
		})
		if err == nil {
			exists = true
			return nil
		}
		if isNotFound(err) {
			return nil
		}
		return err
	})

	return exists, err
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}
