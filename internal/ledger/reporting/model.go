package reporting

import (
	"time"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/money"
)

// Posting is one row of a document's transaction history on an account.
// DocumentType and Reference identify the source document the posting came
// from, which for an offsetting payment differs from the document queried.
type Posting struct {
	Date         time.Time
	DocumentType documents.Type
	Reference    string
	Amount       money.Money
}

// PartyBalanceRow is the running balance of one counterparty on an account.
type PartyBalanceRow struct {
	Party   documents.Party
	Balance money.Money
}

// Basis selects which document date ages are measured from.
type Basis string

const (
	BasisDate    Basis = "date"
	BasisDueDate Basis = "due_date"
)

// Breakdown configures aging buckets: Bounds are day lower-bounds in
// strictly increasing order, e.g. [-1, 0, 7, 14, 30, 60].
type Breakdown struct {
	Bounds []int
	Basis  Basis
}

// AgingBucket is one configured bucket with the open balances that aged into it.
type AgingBucket struct {
	AgeLower int
	Amount   money.Money
	Count    int
}

// OpenDocument is a document with a non-zero current balance on an account,
// as fetched for aging.
type OpenDocument struct {
	DocumentID int64
	Date       time.Time
	DueDate    *time.Time
	Balance    int64
}
