package repository

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this id already exists")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderAlreadyExists   = errors.New("order with this id already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// unavailable marks err as a failure of the backing medium while keeping the
// driver error reachable through errors.Is / errors.As.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
