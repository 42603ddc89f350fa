package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique index. It relies on
// the connection being opened with gorm.Config.TranslateError.
var ErrDuplicate = errors.New("duplicate record")

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// lookupError translates gorm.ErrRecordNotFound into ErrNotFound.
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// writeError wraps err, translating gorm.ErrDuplicatedKey into ErrDuplicate.
func writeError(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to %s: %w", action, ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
