// Package ledger orchestrates document synchronization against a single
// bookkeeping scope: one ledger per tenant, merchant account or AP scope.
package ledger

import "time"

// Ledger is the aggregate root for one bookkeeping scope. Name is unique
// (e.g. "Merchant Account - 42", "Accounts Payable - 7"); every stored
// amount is converted into BaseCurrency.
type Ledger struct {
	ID           int64
	Name         string
	BaseCurrency string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
