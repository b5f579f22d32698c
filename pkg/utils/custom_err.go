package utils

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrGeneration      = errors.New("content generation failed")
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrAttemptCompleted = fmt.Errorf("%w: attempt already completed", ErrInvalidArgument)
	ErrConflict         = errors.New("concurrent modification")
	ErrDatabaseError    = errors.New("database error")
)
