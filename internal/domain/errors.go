package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDecode          = errors.New("stored record could not be decoded")
	ErrTransport       = errors.New("transport failure")
)

// Validation errors. All of them match ErrInvalidArgument with errors.Is.
var (
	ErrEmptyID            = fmt.Errorf("%w: identifier is empty", ErrInvalidArgument)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrInvalidArgument)
	ErrInvalidKind        = fmt.Errorf("%w: kind must be income or expense", ErrInvalidArgument)
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrInvalidArgument)
	ErrNameTooLong        = fmt.Errorf("%w: name exceeds maximum length", ErrInvalidArgument)
	ErrCategoryRequired   = fmt.Errorf("%w: category is required", ErrInvalidArgument)
	ErrDescriptionTooLong = fmt.Errorf("%w: description exceeds maximum length", ErrInvalidArgument)
	ErrInvalidMonth       = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidArgument)
	ErrInvalidYear        = fmt.Errorf("%w: year is out of range", ErrInvalidArgument)
)

// Amount errors. All of them match ErrInvalidAmount with errors.Is.
var (
	ErrAmountNotPositive = fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	ErrAmountPrecision   = fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	ErrAmountTooLarge    = fmt.Errorf("%w: must not exceed %s", ErrInvalidAmount, MaxAmount.StringFixed(AmountScale))
)

// Validation constants
const (
	MaxCategoryNameLength = 100
	MaxDescriptionLength  = 1000
	MinYear               = 1900
	MaxYear               = 2100
)

// ValidateMonthYear checks a 1-based month and a calendar year.
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}
