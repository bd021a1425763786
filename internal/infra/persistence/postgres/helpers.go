package postgres

import (
	"fireworks/internal/domain/repository"

	"gorm.io/gorm"
)

const maxPageSize = 100

// paginate applies limit/offset, capping the page size.
func paginate(db *gorm.DB, opts repository.ListOptions) *gorm.DB {
	limit := opts.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(opts.Offset, 0)

	return db.Limit(limit).Offset(offset)
}

func mapSlice[M any, E any](items []*M, fn func(*M) *E) []*E {
	result := make([]*E, 0, len(items))
	for _, item := range items {
		result = append(result, fn(item))
	}

	return result
}
