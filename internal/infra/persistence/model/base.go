// Package model holds the GORM-specific structs mapped to database tables.
// Relationships are plain foreign-key columns; no associations are declared.
package model

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// newID assigns a time-ordered UUIDv7 when the id is still zero.
func newID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}

	generated, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "failed to generate id")
	}
	*id = generated

	return nil
}
