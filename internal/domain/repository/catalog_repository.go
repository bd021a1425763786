package repository

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagRepository defines tag persistence.
type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	// FindByIDs returns the tags in the same order as ids. Unknown ids yield ErrTagNotFound.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Tag, error)
	List(ctx context.Context) ([]*entity.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
	// Query matches name or description case-insensitively.
	Query string
	ListOptions
}

// ProductRepository defines product persistence. Tags are loaded with every product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// FindByIDs returns the products found, ordered like ids. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// DiscountRepository defines promotion persistence.
type DiscountRepository interface {
	Create(ctx context.Context, discount *entity.Discount) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Discount, error)
	// List returns all promotions, or only those running at runningAt when it is set.
	List(ctx context.Context, runningAt *time.Time) ([]*entity.Discount, error)
	Update(ctx context.Context, discount *entity.Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
}
