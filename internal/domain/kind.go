package domain

import "strings"

// Kind discriminates income from expense on transactions and categories
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind parses a kind, ignoring case and surrounding whitespace
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}
