// Package promocode validates promo codes at checkout and bulk-imports
// promo definitions from gzipped JSON-lines files.
package promocode

import (
	"context"
	"time"

	"jewelry-store/internal/model"
)

// Validator checks whether a promo code may be used right now.
type Validator interface {
	// Validate looks the code up by its exact name and returns it if it is
	// live, active and inside its validity window.
	Validate(ctx context.Context, name string, now time.Time) (*model.PromoCode, error)
}

// Lookup is the read side of promo code storage used by the validator.
type Lookup interface {
	GetByName(ctx context.Context, name string) (*model.PromoCode, error)
}

// Set is a collection of promo definitions keyed by name.
type Set interface {
	// Get returns the definition with the given name.
	Get(name string) (model.PromoCode, bool)

	// Size returns the number of definitions in the set.
	Size() int

	// All returns the definitions in insertion order.
	All() []model.PromoCode
}

// Loader reads a gzipped JSON-lines promo file.
type Loader interface {
	// Load reads the file at path and returns its definitions.
	Load(ctx context.Context, path string) (Set, error)
}
