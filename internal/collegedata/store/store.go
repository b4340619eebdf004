// Package store persists one college-data document per phone number.
//
// The contract mirrors what a hosted document database offers: get-by-key,
// create-document, and update-fields-on-existing-document, each atomic at
// single-document granularity. The create-vs-update decision and any nested
// merging live in the service layer, not here.
package store

import (
	"context"

	"collegedesk/internal/collegedata/models"
)

// FieldSet describes a partial update. A nil field is left untouched on the
// stored document; a non-nil field replaces the stored value wholesale.
type FieldSet struct {
	CollegeOrder  *[]string
	Notes         *map[string][]string
	LikedColleges *[]string
}

// Store is the document-store contract. Implementations return
// sentinel.ErrNotFound from Find and UpdateFields when no document exists
// for the phone number. Backends that can detect a concurrent insert return
// sentinel.ErrConflict from Create; backends whose writes overwrite (memory,
// redis) never do.
type Store interface {
	Find(ctx context.Context, phone string) (*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	UpdateFields(ctx context.Context, phone string, fields FieldSet) error
	Health(ctx context.Context) error
}
