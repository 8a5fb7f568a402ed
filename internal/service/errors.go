package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound marks a missing entity addressed by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that collides with an existing unique value.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned for any failed login or refresh.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// lookupErr maps a repository lookup failure to ErrNotFound where it applies.
func lookupErr(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}
