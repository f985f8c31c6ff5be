package repository

import (
	"foodhub/internal/domain/entity"
)

// LocalCartRepository is the persisted fallback cart tier. It must never be
// the source of an error surfaced to the user: corrupt or missing data reads
// back as an empty cart.
type LocalCartRepository interface {
	// Load the persisted cart. Missing or corrupt data yields an empty slice.
	Load() ([]entity.CartItem, error)

	// Save overwrites the persisted cart.
	Save(items []entity.CartItem) error

	// Exists reports whether a persisted cart value is present, including an
	// explicitly persisted empty cart.
	Exists() (bool, error)

	// Delete erases the persisted cart value entirely.
	Delete() error
}
