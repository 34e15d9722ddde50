package journal

import (
	"time"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/money"
)

// Entry is one debit or credit posting supplied by a caller. Amount is in
// the owning transaction's currency, minor units.
type Entry struct {
	Account string
	Side    money.Side
	Amount  int64
	Party   *documents.Party
	// AppliesTo targets another document's balance (a payment offsetting an
	// invoice). Nil means the entry counts against the synced document itself.
	AppliesTo *documents.Ref
}

// Transaction is a balanced set of entries posted at a point in time.
type Transaction struct {
	Date        time.Time
	Currency    string
	Description string
	Entries     []Entry
}

// Effective returns the transaction's entries with zero-amount lines dropped.
// Zero entries are disallowed in storage; dropping them is not an error.
func (t Transaction) Effective() []Entry {
	out := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Amount == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// PostingEntry is a fully resolved entry ready for storage: account and
// target document resolved to ids, amount converted to base currency.
type PostingEntry struct {
	AccountID  int64
	DocumentID int64
	Party      documents.Party
	Amount     money.SignedAmount
}

// Posting is a resolved transaction ready for storage.
type Posting struct {
	Date        time.Time
	Currency    string
	Description string
	Entries     []PostingEntry
}

// ValidateBalanced checks the double-entry invariant over converted amounts:
// the sum of debits equals the sum of credits in the ledger base currency.
func ValidateBalanced(entries []PostingEntry) error {
	if len(entries) == 0 {
		return shared.ErrNoEntries
	}
	var net int64
	for _, e := range entries {
		if !e.Amount.Side.Valid() {
			return shared.ErrInvalidSide
		}
		net += e.Amount.Effect()
	}
	if net != 0 {
		return shared.ErrUnbalanced
	}
	return nil
}

// StoredEntry is a persisted ledger entry.
type StoredEntry struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	DocumentID    int64
	Party         documents.Party
	Amount        money.SignedAmount
	CreatedAt     time.Time
}

// StoredTransaction is a persisted transaction with its entries.
type StoredTransaction struct {
	ID          int64
	LedgerID    int64
	DocumentID  int64
	Date        time.Time
	Currency    string
	Description string
	Entries     []StoredEntry
	CreatedAt   time.Time
}
