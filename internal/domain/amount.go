package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of decimal places an amount may carry
const AmountScale = 2

// MaxAmount is the largest amount the stores can hold exactly
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ValidateAmount checks that amount is positive, has at most AmountScale decimal
// places and does not exceed MaxAmount. Stored amounts are never rounded.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return ErrAmountNotPositive
	case !amount.Equal(amount.Truncate(AmountScale)):
		return ErrAmountPrecision
	case amount.GreaterThan(MaxAmount):
		return ErrAmountTooLarge
	}
	return nil
}
