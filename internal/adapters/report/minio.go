package report

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.trai.ch/grid/internal/core/domain"
	"go.trai.ch/zerr"
)

// ObjectUploader is the slice of object storage the reporter needs.
type ObjectUploader interface {
	EnsureBucket(ctx context.Context, bucket, region string) error
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}

// UploaderFactory builds an ObjectUploader for one run declaration.
type UploaderFactory func(cfg domain.ReportConfig) (ObjectUploader, error)

// MinioUploader implements ObjectUploader backed by a MinIO/S3 endpoint.
type MinioUploader struct {
	client *minio.Client
}

// NewMinioUploader creates an uploader from the declared storage settings.
func NewMinioUploader(cfg domain.ReportConfig) (ObjectUploader, error) {
	if strings.Contains(cfg.Endpoint, "://") {
		return nil, zerr.With(zerr.New("storage endpoint must not include a scheme"), "endpoint", cfg.Endpoint)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create object storage client")
	}

	return &MinioUploader{client: client}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *MinioUploader) EnsureBucket(ctx context.Context, bucket, region string) error {
	exists, err := u.client.BucketExists(ctx, bucket)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to check bucket"), "bucket", bucket)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create bucket"), "bucket", bucket)
	}
	return nil
}

// Upload stores one object.
func (u *MinioUploader) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := u.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to upload object"), "key", key)
	}
	return nil
}
