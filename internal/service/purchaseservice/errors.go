package purchaseservice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadySold     = errors.New("product already sold")
	ErrOutOfStock      = errors.New("not enough stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUserNotFound    = balanceservice.ErrUserNotFound
)

// CheckoutError lists the cart items that made a checkout fail so the
// caller can prune them. SoldProductIDs is never nil.
type CheckoutError struct {
	Err               error
	SoldProductIDs    []uuid.UUID
	MissingProductIDs []uuid.UUID
}

func (e *CheckoutError) Error() string {
	var parts []string
	if len(e.MissingProductIDs) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", joinIDs(e.MissingProductIDs)))
	}
	if len(e.SoldProductIDs) > 0 {
		parts = append(parts, fmt.Sprintf("sold %s", joinIDs(e.SoldProductIDs)))
	}
	if len(parts) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, strings.Join(parts, "; "))
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func joinIDs(ids []uuid.UUID) string {
	s := make([]string, 0, len(ids))
	for _, id := range ids {
		s = append(s, id.String())
	}
	return strings.Join(s, ", ")
}
