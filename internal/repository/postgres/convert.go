package postgres

import (
	"errors"
	"fmt"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

// pgNumericToDecimal converts a stored amount; NULL, NaN and infinities are not amounts
func pgNumericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, fmt.Errorf("%w: amount is not a finite number", domain.ErrDecode)
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func parseStoredKind(s string) (domain.Kind, error) {
	kind := domain.Kind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", domain.ErrDecode, s)
	}
	return kind, nil
}

// storeError classifies a query error. Decode and not-found errors pass through;
// everything else is a transport failure.
func storeError(entity domain.EntityKind, id string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	case errors.Is(err, domain.ErrDecode), errors.Is(err, domain.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrTransport, entity, err)
	}
}
