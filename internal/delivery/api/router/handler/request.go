// Package handler contains the HTTP handlers of the REST API.
package handler

import (
	"io"
	"net/http"

	"fireworks/internal/delivery/api/response"
	"fireworks/internal/delivery/api/validator"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	imageFormField  = "image"
)

// HealthCheck reports that the process serves requests.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func invalidID(c echo.Context, what string) error {
	return response.BadRequest(c, "INVALID_ID", "Invalid "+what+" ID")
}

func validationFailed(c echo.Context, err error) error {
	return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Request validation failed", validator.Details(err))
}

func parsePage(c echo.Context) (usecase.Page, error) {
	page := usecase.Page{Limit: defaultPageSize}
	err := echo.QueryParamsBinder(c).
		Int("limit", &page.Limit).
		Int("offset", &page.Offset).
		BindError()
	if err != nil {
		return page, errors.WithStack(err)
	}

	if page.Limit <= 0 || page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}
	page.Offset = max(page.Offset, 0)

	return page, nil
}

func pagination(page usecase.Page, total int64) response.Pagination {
	return response.Pagination{Total: total, Limit: page.Limit, Offset: page.Offset}
}

// readImageUpload reads the multipart "image" field.
func readImageUpload(c echo.Context) (usecase.ImageUpload, error) {
	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		return usecase.ImageUpload{}, errors.Wrap(err, "missing image field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return usecase.ImageUpload{}, errors.Wrap(err, "failed to open uploaded image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return usecase.ImageUpload{}, errors.Wrap(err, "failed to read uploaded image")
	}

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}

	return usecase.ImageUpload{
		Data:        data,
		ContentType: contentType,
		FileName:    fileHeader.Filename,
	}, nil
}
