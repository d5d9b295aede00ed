package core

import (
	"errors"

	database "play4peace-server/internal/db"
)

var (
	ErrCapacityExceeded = errors.New("game is full")
	ErrContention       = errors.New("too many concurrent roster changes")

	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime     = errors.New("time must be HH:MM")
	ErrInvalidLocation = errors.New("location cannot be empty")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidName     = errors.New("name cannot be empty")
	ErrEmptyTitle      = errors.New("announcement title cannot be empty")
	ErrEmptyContent    = errors.New("announcement content cannot be empty")
	ErrEmptyUpdate     = errors.New("update sets no fields")
	ErrInvalidObject   = errors.New("invalid object key")
)

// IsTransient reports whether err may succeed if the caller retries as is.
func IsTransient(err error) bool {
	return errors.Is(err, ErrContention) || errors.Is(err, database.ErrUnavailable)
}

// IsInvalid reports whether err is an input validation failure.
func IsInvalid(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrInvalidTime, ErrInvalidLocation, ErrInvalidCapacity,
		ErrInvalidName, ErrEmptyTitle, ErrEmptyContent, ErrEmptyUpdate, ErrInvalidObject,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
