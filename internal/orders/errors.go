package orders

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmptyOrder          = errors.New("order has no products")
	ErrProductNotFound     = errors.New("product not found")
	ErrNoAvailableProducts = errors.New("no valid products found")
	ErrInvalidAmount       = errors.New("total amount is invalid")
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmailInUse          = errors.New("email is already in use")
	ErrBadCredentials      = errors.New("invalid credentials")
)

// InvalidPriceError names the offending product; errors.Is matches it
// against ErrInvalidPrice.
type InvalidPriceError struct {
	ProductID string
}

var ErrInvalidPrice = errors.New("invalid product price")

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price for product %s", e.ProductID)
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrInvalidPrice }
