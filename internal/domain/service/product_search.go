package service

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// ProductSearcher runs full text catalog search.
type ProductSearcher interface {
	// Search returns matching product ids ordered by relevance and the total hit count.
	Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int64, error)
	Index(ctx context.Context, product *entity.Product) error
	Remove(ctx context.Context, productID uuid.UUID) error
}
