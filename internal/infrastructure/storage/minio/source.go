// Package minio reads raw patent documents from an object-storage bucket,
// serving as the ingestion source in deployments where documents are uploaded
// rather than mounted on local disk.
package minio

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// SourceConfig holds the object-storage parameters.
type SourceConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Source lists and reads ".txt" documents from one bucket.  It implements the
// ingestion source contract alongside the local directory source.
type Source struct {
	client *minio.Client
	bucket string
	logger logging.Logger
}

// NewSource connects to the object store and verifies the bucket exists.
func NewSource(ctx context.Context, cfg SourceConfig, logger logging.Logger) (*Source, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check bucket")
	}
	if !exists {
		return nil, errors.Newf(errors.ErrCodeValidation, "bucket %q does not exist", cfg.Bucket)
	}

	logger.Info("minio source ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return &Source{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// List returns the names of all ".txt" objects in the bucket.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeFileUnreadable, "failed to list bucket objects")
		}
		if strings.HasSuffix(obj.Key, ".txt") {
			names = append(names, obj.Key)
		}
	}
	return names, nil
}

// Read returns the raw text of one object.
func (s *Source) Read(ctx context.Context, name string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to open object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to read object")
	}
	return string(data), nil
}
