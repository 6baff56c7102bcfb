package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Config holds the settings for an S3 backed storage
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// S3Storage serves files from one bucket, optionally below a key prefix
type S3Storage struct {
	api    s3iface.S3API
	bucket string
	prefix string
}

// NewS3Storage opens an AWS session for cfg
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StorageWithAPI(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewS3StorageWithAPI wraps an existing S3 client
func NewS3StorageWithAPI(api s3iface.S3API, bucket, prefix string) *S3Storage {
	return &S3Storage{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Storage) key(p string) string {
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
	if s.prefix == "" {
		return p
	}
	return s.prefix + "/" + p
}

// List returns the objects directly below dir. Continuation tokens are
// followed until the listing is complete.
func (s *S3Storage) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(s.key(dir), "/") + "/"
	params := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}

	var paths []string
	for {
		out, err := s.api.ListObjectsV2WithContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			paths = append(paths, Join(dir, name))
		}
		if !aws.BoolValue(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		params.ContinuationToken = out.NextContinuationToken
	}

	sort.Strings(paths)
	return paths, nil
}

// Get reads the object at p
func (s *S3Storage) Get(ctx context.Context, p string) ([]byte, error) {
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("failed to read %s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Put writes data to p
func (s *S3Storage) Put(ctx context.Context, p string, data []byte) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// Exists reports whether the object at p is present
func (s *S3Storage) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", p, err)
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
