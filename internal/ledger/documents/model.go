package documents

import "time"

// Party identifies a counterparty (vendor, customer, ...) used to segment balances.
type Party struct {
	Kind string
	ID   int64
}

// Zero reports whether no party was supplied.
func (p Party) Zero() bool {
	return p.Kind == "" && p.ID == 0
}

// Type enumerates the closed set of source document kinds.
type Type string

const (
	TypeInvoice            Type = "INVOICE"
	TypeCreditNote         Type = "CREDIT_NOTE"
	TypePayment            Type = "PAYMENT"
	TypePayout             Type = "PAYOUT"
	TypePayoutReversal     Type = "PAYOUT_REVERSAL"
	TypeFee                Type = "FEE"
	TypeRefund             Type = "REFUND"
	TypeChargeback         Type = "CHARGEBACK"
	TypeChargebackReversal Type = "CHARGEBACK_REVERSAL"
	TypeAdjustment         Type = "ADJUSTMENT"
)

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	switch t {
	case TypeInvoice, TypeCreditNote, TypePayment, TypePayout, TypePayoutReversal,
		TypeFee, TypeRefund, TypeChargeback, TypeChargebackReversal, TypeAdjustment:
		return true
	}
	return false
}

// Ref is the natural key of a document within a ledger.
type Ref struct {
	Type      Type
	Reference string
}

// Document describes a source business object as the ledger sees it.
// (Type, Reference) is the identity; the rest is refreshable metadata.
type Document struct {
	Type      Type
	Reference string
	Party     Party
	Date      time.Time
	DueDate   *time.Time
	Number    string
}

// Ref returns the document's natural key.
func (d Document) Ref() Ref {
	return Ref{Type: d.Type, Reference: d.Reference}
}

// Record is a persisted document. The internal ID is stable for the life of
// the (ledger, type, reference) identity, surviving edits and voids.
type Record struct {
	ID       int64
	LedgerID int64
	Document
	CreatedAt time.Time
	UpdatedAt time.Time
}
