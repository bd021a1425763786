package handler

import (
	"log/slog"
	"net/http"

	"fireworks/internal/delivery/api/response"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CatalogHandlerParams holds dependencies for CatalogHandler, injected by Fx.
type CatalogHandlerParams struct {
	fx.In

	CatalogUC usecase.CatalogUsecase
	Logger    *slog.Logger
}

// CatalogHandler serves categories, products, tags and images.
type CatalogHandler struct {
	catalogUC usecase.CatalogUsecase
	logger    *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler.
func NewCatalogHandler(params CatalogHandlerParams) *CatalogHandler {
	return &CatalogHandler{
		catalogUC: params.CatalogUC,
		logger:    params.Logger,
	}
}

// CategoryRequest is the body of category writes.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// ProductRequest is the body of product writes.
type ProductRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required,numeric"`
	IsActive    *bool  `json:"is_active"`
}

func (r *ProductRequest) toInput() (usecase.ProductInput, error) {
	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return usecase.ProductInput{}, errors.WithStack(err)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return usecase.ProductInput{}, errors.WithStack(err)
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return usecase.ProductInput{
		CategoryID:  categoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		IsActive:    isActive,
	}, nil
}

// SetTagsRequest replaces the tags of a product.
type SetTagsRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids"`
}

// TagRequest creates a tag.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// ListCategories returns every category.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogUC.ListCategories(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(categories, newCategoryView))
}

// GetCategory returns one category.
func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	category, err := h.catalogUC.GetCategory(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCategoryView(category))
}

// CreateCategory handles category creation.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	category, err := h.catalogUC.CreateCategory(c.Request().Context(), usecase.CategoryInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newCategoryView(category))
}

// UpdateCategory handles category updates.
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	category, err := h.catalogUC.UpdateCategory(c.Request().Context(), id, usecase.CategoryInput(req))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newCategoryView(category))
}

// DeleteCategory handles category removal.
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "category")
	}

	if err := h.catalogUC.DeleteCategory(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListProducts returns active products, optionally of one category.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	return h.listProducts(c, false)
}

// ListAllProducts returns products including inactive ones.
func (h *CatalogHandler) ListAllProducts(c echo.Context) error {
	return h.listProducts(c, true)
}

func (h *CatalogHandler) listProducts(c echo.Context, includeInactive bool) error {
	page, err := parsePage(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid pagination parameters")
	}

	input := usecase.ProductListInput{IncludeInactive: includeInactive, Page: page}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return invalidID(c, "category")
		}
		input.CategoryID = &categoryID
	}

	output, err := h.catalogUC.ListProducts(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paginated(c, mapViews(output.Products, newProductView), pagination(page, output.Total))
}

// SearchProducts runs a full-text search over the catalog.
func (h *CatalogHandler) SearchProducts(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_QUERY", "Invalid pagination parameters")
	}

	output, err := h.catalogUC.SearchProducts(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Paginated(c, mapViews(output.Products, newProductView), pagination(page, output.Total))
}

// GetProduct returns an active product.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	return h.getProduct(c, false)
}

// GetAnyProduct returns a product even when it is inactive.
func (h *CatalogHandler) GetAnyProduct(c echo.Context) error {
	return h.getProduct(c, true)
}

func (h *CatalogHandler) getProduct(c echo.Context, includeInactive bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	product, err := h.catalogUC.GetProduct(c.Request().Context(), id, includeInactive)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductView(product))
}

// ProductQRCode renders the deep-link QR code of a product as PNG.
func (h *CatalogHandler) ProductQRCode(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	png, err := h.catalogUC.ProductQRCode(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// CreateProduct handles product creation.
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	input, err := req.toInput()
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product category or price")
	}

	product, err := h.catalogUC.CreateProduct(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newProductView(product))
}

// UpdateProduct handles product updates.
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	input, err := req.toInput()
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product category or price")
	}

	product, err := h.catalogUC.UpdateProduct(c.Request().Context(), id, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductView(product))
}

// DeleteProduct handles product removal.
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	if err := h.catalogUC.DeleteProduct(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SetProductTags replaces the tags of a product.
func (h *CatalogHandler) SetProductTags(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	var req SetTagsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tag list")
	}

	product, err := h.catalogUC.SetProductTags(c.Request().Context(), id, req.TagIDs)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductView(product))
}

// UploadProductImage replaces the product photo.
func (h *CatalogHandler) UploadProductImage(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	upload, err := readImageUpload(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_IMAGE", "A multipart \"image\" file is required")
	}

	product, err := h.catalogUC.UploadProductImage(c.Request().Context(), id, upload)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProductView(product))
}

// GetImage streams a stored image by key.
func (h *CatalogHandler) GetImage(c echo.Context) error {
	key := c.Param("*")
	if key == "" {
		return response.BadRequest(c, "INVALID_KEY", "Image key is required")
	}

	data, err := h.catalogUC.GetImage(c.Request().Context(), key)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")

	return c.Blob(http.StatusOK, http.DetectContentType(data), data)
}

// ListTags returns every tag.
func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.catalogUC.ListTags(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, mapViews(tags, newTagView))
}

// CreateTag handles tag creation.
func (h *CatalogHandler) CreateTag(c echo.Context) error {
	var req TagRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid tag input")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	tag, err := h.catalogUC.CreateTag(c.Request().Context(), req.Name)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newTagView(tag))
}

// DeleteTag handles tag removal.
func (h *CatalogHandler) DeleteTag(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "tag")
	}

	if err := h.catalogUC.DeleteTag(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
