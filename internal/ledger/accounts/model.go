package accounts

import "time"

// Type enumerates chart of accounts categories.
type Type string

const (
	TypeAsset     Type = "ASSET"
	TypeLiability Type = "LIABILITY"
	TypeEquity    Type = "EQUITY"
	TypeRevenue   Type = "REVENUE"
	TypeExpense   Type = "EXPENSE"
)

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// Account models a chart of accounts node within one ledger.
// Name uniquely identifies the account inside its ledger; type and currency
// never change after creation.
type Account struct {
	ID        int64
	LedgerID  int64
	Name      string
	Type      Type
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
