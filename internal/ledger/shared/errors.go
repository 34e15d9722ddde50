package shared

import "errors"

var (
	// ErrUnbalanced indicates a transaction whose debits != credits in base currency.
	ErrUnbalanced = errors.New("ledger: transaction entries must balance")
	// ErrNoEntries indicates a transaction with no effective entries was required to have some.
	ErrNoEntries = errors.New("ledger: transaction requires at least one entry")
	// ErrAccountNotFound indicates an entry referenced an unregistered account name.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrAccountConflict indicates find-or-create with a different type or currency for an existing name.
	ErrAccountConflict = errors.New("ledger: account exists with different type or currency")
	// ErrLedgerNotFound indicates a ledger lookup by id failed.
	ErrLedgerNotFound = errors.New("ledger: ledger not found")
	// ErrLedgerExists indicates create was called for a name already registered.
	ErrLedgerExists = errors.New("ledger: ledger already exists")
	// ErrDocumentNotFound indicates a document lookup failed.
	ErrDocumentNotFound = errors.New("ledger: document not found")
	// ErrInvalidDocument indicates a document missing its natural key.
	ErrInvalidDocument = errors.New("ledger: document type and reference required")
	// ErrInvalidSide indicates an entry side outside DEBIT/CREDIT.
	ErrInvalidSide = errors.New("ledger: entry side must be debit or credit")
	// ErrRateUnavailable indicates currency conversion could not produce a rate.
	ErrRateUnavailable = errors.New("ledger: exchange rate unavailable")
	// ErrInvalidBreakdown indicates aging bucket bounds are empty or not increasing.
	ErrInvalidBreakdown = errors.New("ledger: aging bounds must be non-empty and strictly increasing")
)
