package service

import (
	"errors"

	"storefront/internal/saga"
)

var (
	// ErrInvalidArgument marks input the caller must fix before retrying.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInconsistent is returned when a multi-step operation failed half way
	// and could not be rolled back.
	ErrInconsistent = saga.ErrInconsistent
)
