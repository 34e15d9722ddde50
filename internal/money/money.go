// Package money provides integer minor-unit amounts tagged with a currency.
package money

import (
	"errors"
	"fmt"

	"golang.org/x/text/currency"
)

// ErrInvalidCurrency indicates a code that is not ISO 4217.
var ErrInvalidCurrency = errors.New("money: invalid currency code")

// Money is an amount in minor units (e.g. cents) of a currency.
// All monetary math is integer; float64 never stores an amount.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value after validating the currency code.
func New(amount int64, code string) (Money, error) {
	normalized, err := NormalizeCurrency(code)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: normalized}, nil
}

// NormalizeCurrency validates code against ISO 4217 and returns its canonical form.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// Side marks an amount as a debit or a credit.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// Signed returns amount with the conventional sign for the side:
// debits positive, credits negative. Balances are sums of Signed values.
func (s Side) Signed(amount int64) int64 {
	if s == SideCredit {
		return -amount
	}
	return amount
}

// SignedAmount carries a posting amount on one side of an account, both in
// the ledger base currency and in the original transaction currency, so
// reports can present either without re-querying rates.
type SignedAmount struct {
	Side             Side
	Amount           int64 // ledger base currency, minor units
	OriginalAmount   int64 // transaction currency, minor units
	OriginalCurrency string
}

// Effect is the signed contribution of the amount to a balance in base currency.
func (a SignedAmount) Effect() int64 {
	return a.Side.Signed(a.Amount)
}
