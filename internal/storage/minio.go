package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clipd/internal/config"
	"clipd/internal/logging"
	"clipd/internal/services"
)

// MinIO implements Store against a MinIO (or S3-compatible) endpoint.
type MinIO struct {
	client          *minio.Client
	bucket          string
	downloadTimeout time.Duration
	uploadTimeout   time.Duration
	logger          *slog.Logger
}

// NewMinIO builds a Store from the storage section of the configuration.
func NewMinIO(cfg *config.Config, logger *slog.Logger) (*MinIO, error) {
	sc := cfg.Storage
	client, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "connect", "create object store client", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MinIO{
		client:          client,
		bucket:          sc.Bucket,
		downloadTimeout: time.Duration(sc.DownloadTimeout) * time.Second,
		uploadTimeout:   time.Duration(sc.UploadTimeout) * time.Second,
		logger:          logger.With(logging.FieldComponent, "storage"),
	}, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return services.Wrap(services.ErrTransient, "storage", "ensure bucket", "check bucket", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return services.Wrap(services.ErrTransient, "storage", "ensure bucket", "create bucket", err)
	}
	return nil
}

// Download copies an object to a local file path.
func (m *MinIO) Download(ctx context.Context, objectPath, localPath string) error {
	if err := ValidateObjectPath(objectPath); err != nil {
		return services.Wrap(services.ErrValidation, "storage", "download", err.Error(), nil)
	}

	ctx, cancel := m.withTimeout(ctx, m.downloadTimeout)
	defer cancel()

	start := time.Now()
	if err := m.client.FGetObject(ctx, m.bucket, objectPath, localPath, minio.GetObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return services.Wrap(services.ErrSourceNotFound, "storage", "download",
				fmt.Sprintf("object %s not found in bucket %s", objectPath, m.bucket), err)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "storage", "download",
				fmt.Sprintf("download of %s exceeded %s", objectPath, m.downloadTimeout), err)
		}
		return services.Wrap(services.ErrTransient, "storage", "download",
			fmt.Sprintf("fetch object %s", objectPath), err)
	}
	m.logger.Info("downloaded object",
		logging.String("object", objectPath),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// Upload copies a local file to an object path.
func (m *MinIO) Upload(ctx context.Context, localPath, objectPath string) error {
	if err := ValidateObjectPath(objectPath); err != nil {
		return services.Wrap(services.ErrValidation, "storage", "upload", err.Error(), nil)
	}

	ctx, cancel := m.withTimeout(ctx, m.uploadTimeout)
	defer cancel()

	start := time.Now()
	info, err := m.client.FPutObject(ctx, m.bucket, objectPath, localPath, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "storage", "upload",
				fmt.Sprintf("upload of %s exceeded %s", objectPath, m.uploadTimeout), err)
		}
		return services.Wrap(services.ErrUpload, "storage", "upload",
			fmt.Sprintf("put object %s", objectPath), err)
	}
	m.logger.Info("uploaded object",
		logging.String("object", objectPath),
		logging.Int64("bytes", info.Size),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// Exists reports whether the object is present in the bucket.
func (m *MinIO) Exists(ctx context.Context, objectPath string) (bool, error) {
	if err := ValidateObjectPath(objectPath); err != nil {
		return false, services.Wrap(services.ErrValidation, "storage", "stat", err.Error(), nil)
	}
	_, err := m.client.StatObject(ctx, m.bucket, objectPath, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, services.Wrap(services.ErrTransient, "storage", "stat",
		fmt.Sprintf("stat object %s", objectPath), err)
}

func (m *MinIO) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
