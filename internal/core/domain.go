package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnknownCategory labels records that carry no category.
const UnknownCategory = "Unknown"

type (
	// Transaction is one sale/listing record as seeded from the product feed.
	Transaction struct {
		ID          string    `json:"_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		Category    string    `json:"category"`
		Sold        bool      `json:"sold"`
		DateOfSale  time.Time `json:"dateOfSale"`
		Image       string    `json:"image,omitempty"`
	}
)

var (
	// ErrClientInput marks errors caused by the caller's request parameters.
	ErrClientInput = errors.New("invalid client input")
	// ErrUpstream marks failures of the store or the seed feed.
	ErrUpstream = errors.New("upstream failure")

	ErrMonthRequired = fmt.Errorf("%w: month is required", ErrClientInput)
	ErrInvalidMonth  = fmt.Errorf("%w: invalid month", ErrClientInput)

	ErrEmptyID       = errors.New("empty transaction id")
	ErrNegativePrice = errors.New("negative price")
	ErrZeroDate      = errors.New("date of sale cannot be zero")
)

// IsClientInput reports whether err was caused by invalid request parameters.
func IsClientInput(err error) bool {
	return errors.Is(err, ErrClientInput)
}

// Upstream wraps err so callers can classify it as a store or feed failure.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// CategoryLabel returns the category, or UnknownCategory when it is blank.
func (t Transaction) CategoryLabel() string {
	if strings.TrimSpace(t.Category) == "" {
		return UnknownCategory
	}
	return t.Category
}

// SaleMonth returns the calendar month of the sale in UTC.
func (t Transaction) SaleMonth() time.Month {
	return t.DateOfSale.UTC().Month()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if t.Price < 0 {
		return ErrNegativePrice
	}
	if t.DateOfSale.IsZero() {
		return ErrZeroDate
	}
	return nil
}
