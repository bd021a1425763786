package service

import "context"

// ImageStorage stores product, promotion and newsletter images.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns domainerrors.ErrImageNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
