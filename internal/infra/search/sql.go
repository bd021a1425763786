package search

import (
	"context"

	"fireworks/internal/domain/entity"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"

	"github.com/google/uuid"
)

// productLister is satisfied by repository.ProductRepository.
type productLister interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error)
}

// sqlSearcher falls back to substring matching in the database when no
// Elasticsearch cluster is configured. Indexing is a no-op.
type sqlSearcher struct {
	products productLister
}

// NewSQLSearcher is the constructor for sqlSearcher.
func NewSQLSearcher(products productLister) service.ProductSearcher {
	return &sqlSearcher{products: products}
}

func (s *sqlSearcher) Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int64, error) {
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		ActiveOnly:  true,
		Query:       query,
		ListOptions: repository.ListOptions{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}

	return ids, total, nil
}

func (s *sqlSearcher) Index(context.Context, *entity.Product) error { return nil }

func (s *sqlSearcher) Remove(context.Context, uuid.UUID) error { return nil }
