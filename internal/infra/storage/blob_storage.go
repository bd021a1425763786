// Package storage keeps product and newsletter images in a gocloud blob bucket.
package storage

import (
	"context"
	"log/slog"

	"fireworks/config"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

const defaultBucketURL = "mem://"

type blobStorage struct {
	bucket *blob.Bucket
}

// NewBlobStorage wraps an opened bucket.
func NewBlobStorage(bucket *blob.Bucket) service.ImageStorage {
	return &blobStorage{bucket: bucket}
}

func (s *blobStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "failed to write image %s", key)
	}

	return nil
}

func (s *blobStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, domainerrors.ErrImageNotFound
		}

		return nil, errors.Wrapf(err, "failed to read image %s", key)
	}

	return data, nil
}

func (s *blobStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "failed to delete image %s", key)
	}

	return nil
}

// StorageParams holds dependencies for ImageStorage, injected by Fx
type StorageParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewImageStorage opens the configured bucket URL. An in-memory bucket is used when none is set.
func NewImageStorage(params StorageParams) (service.ImageStorage, error) {
	bucketURL := defaultBucketURL
	if params.Config.Storage != nil && params.Config.Storage.BucketURL != "" {
		bucketURL = params.Config.Storage.BucketURL
	}

	bucket, err := blob.OpenBucket(params.Ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	params.Logger.Info("Image storage opened", slog.String("bucket", bucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return bucket.Close()
		},
	})

	return NewBlobStorage(bucket), nil
}
