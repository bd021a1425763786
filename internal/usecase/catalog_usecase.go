package usecase

import (
	"context"
	"time"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string
	Description string
	SortOrder   int
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
}

// ProductListInput filters product listings. Inactive products are only listed for staff.
type ProductListInput struct {
	CategoryID      *uuid.UUID
	IncludeInactive bool
	Page
}

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Data        []byte
	ContentType string
	FileName    string
}

// DiscountInput is the writable part of a promotion.
type DiscountInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	IsActive    bool
}

// --- Output DTOs ---

// ProductListOutput is one page of products.
type ProductListOutput struct {
	Products []*entity.Product
	Total    int64
}

// CatalogUsecase defines catalog operations over categories, products and tags.
type CatalogUsecase interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*entity.Category, error)
	// DeleteCategory fails with ErrCategoryInUse while products reference it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, input ProductListInput) (*ProductListOutput, error)
	GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*entity.Product, error)
	SearchProducts(ctx context.Context, query string, page Page) (*ProductListOutput, error)
	CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*entity.Product, error)
	// DeleteProduct removes the product with its cart rows, favorites and tag links.
	// Order line items keep their snapshot and lose the product reference.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductTags(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) (*entity.Product, error)
	UploadProductImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*entity.Product, error)
	// ProductQRCode renders a PNG that opens the product in the Telegram bot.
	ProductQRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
	GetImage(ctx context.Context, key string) ([]byte, error)

	ListTags(ctx context.Context) ([]*entity.Tag, error)
	CreateTag(ctx context.Context, name string) (*entity.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

// DiscountUsecase defines promotion operations.
type DiscountUsecase interface {
	// ListRunning returns promotions visible to customers right now.
	ListRunning(ctx context.Context) ([]*entity.Discount, error)
	ListAll(ctx context.Context) ([]*entity.Discount, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (*entity.Discount, error)
	CreateDiscount(ctx context.Context, input DiscountInput) (*entity.Discount, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, input DiscountInput) (*entity.Discount, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
	UploadDiscountImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*entity.Discount, error)
}
