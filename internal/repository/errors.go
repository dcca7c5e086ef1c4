package repository

import (
	"errors"
	"fmt"

	"github.com/efactura/efactura/internal/validation"
)

// ErrNotFound signals a lookup by id that matched no row, as opposed to an
// empty collection.
var ErrNotFound = errors.New("not found")

// ValidationError carries the field violations that blocked a write. Nothing
// is persisted when it is returned.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Violations))
}

func checkValid(entity any) error {
	if v := validation.Struct(entity); !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}
