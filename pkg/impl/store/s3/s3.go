package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/adammck/lrucache/pkg/api"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Store keeps each value as one object, named by its key plus an optional
// prefix. Credentials, region, and endpoint come from the environment via the
// SDK's default config chain.
type Store struct {
	bucket string
	prefix string

	mu sync.Mutex
	s3 *s3.Client
}

var _ api.Store = (*Store)(nil) // Type check: implements interface

func New(bucket, prefix string) *Store {
	return &Store{
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	c, err := s.getS3(ctx)
	if err != nil {
		return nil, err
	}

	output, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &api.NotFound{Key: key}
		}
		return nil, fmt.Errorf("GetObject: %w", err)
	}
	defer output.Body.Close()

	b, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}

	return b, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	c, err := s.getS3(ctx)
	if err != nil {
		return err
	}

	_, err = c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           aws.String(s.prefix + key),
		Body:          bytes.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
	})
	if err != nil {
		return fmt.Errorf("PutObject: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	c, err := s.getS3(ctx)
	if err != nil {
		return err
	}

	// S3 deletes are idempotent, so a missing key is not an error.
	_, err = c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		return fmt.Errorf("DeleteObject: %w", err)
	}

	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	c, err := s.getS3(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	p := s3.NewListObjectsV2Paginator(c, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: aws.String(s.prefix),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListObjectsV2: %w", err)
		}

		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}

	return keys, nil
}

// Ping checks that the bucket exists and is reachable with the configured
// credentials.
func (s *Store) Ping(ctx context.Context) error {
	c, err := s.getS3(ctx)
	if err != nil {
		return err
	}

	_, err = c.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err != nil {
		return fmt.Errorf("HeadBucket: %w", err)
	}

	return nil
}

func (s *Store) getS3(ctx context.Context) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.s3 != nil {
		return s.s3, nil
	}

	c, err := connectToS3(ctx)
	if err != nil {
		return nil, fmt.Errorf("connectToS3: %w", err)
	}

	s.s3 = c
	return c, nil
}

func connectToS3(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}
