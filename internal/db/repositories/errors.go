package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate value")
)

// translate maps GORM driver errors onto repository sentinels.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf(format+": %w", append(args, ErrDuplicate)...)
	default:
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
}
