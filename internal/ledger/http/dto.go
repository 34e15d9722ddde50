package ledgerhttp

import (
	"time"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/journal"
	"github.com/tidewater-fin/tidewater/internal/money"
)

type createLedgerRequest struct {
	Name         string `json:"name" validate:"required"`
	BaseCurrency string `json:"base_currency" validate:"required,len=3"`
}

type accountRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type partyPayload struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

type refPayload struct {
	Type      string `json:"type" validate:"required"`
	Reference string `json:"reference" validate:"required"`
}

type documentPayload struct {
	Type      string       `json:"type" validate:"required"`
	Reference string       `json:"reference" validate:"required"`
	Party     partyPayload `json:"party"`
	Date      time.Time    `json:"date" validate:"required"`
	DueDate   *time.Time   `json:"due_date"`
	Number    string       `json:"number"`
}

type entryPayload struct {
	Account   string        `json:"account" validate:"required"`
	Side      string        `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount    int64         `json:"amount"`
	Party     *partyPayload `json:"party"`
	AppliesTo *refPayload   `json:"applies_to" validate:"omitempty"`
}

type transactionPayload struct {
	Date        time.Time      `json:"date" validate:"required"`
	Currency    string         `json:"currency" validate:"required,len=3"`
	Description string         `json:"description"`
	Entries     []entryPayload `json:"entries" validate:"required,min=1,dive"`
}

type syncRequest struct {
	Document     documentPayload      `json:"document" validate:"required"`
	Transactions []transactionPayload `json:"transactions" validate:"dive"`
}

type voidRequest struct {
	Document documentPayload `json:"document" validate:"required"`
}

func (p documentPayload) toDomain() documents.Document {
	return documents.Document{
		Type:      documents.Type(p.Type),
		Reference: p.Reference,
		Party:     documents.Party(p.Party),
		Date:      p.Date,
		DueDate:   p.DueDate,
		Number:    p.Number,
	}
}

func (p transactionPayload) toDomain() journal.Transaction {
	txn := journal.Transaction{
		Date:        p.Date,
		Currency:    p.Currency,
		Description: p.Description,
		Entries:     make([]journal.Entry, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		entry := journal.Entry{
			Account: e.Account,
			Side:    money.Side(e.Side),
			Amount:  e.Amount,
		}
		if e.Party != nil {
			party := documents.Party(*e.Party)
			entry.Party = &party
		}
		if e.AppliesTo != nil {
			ref := documents.Ref{Type: documents.Type(e.AppliesTo.Type), Reference: e.AppliesTo.Reference}
			entry.AppliesTo = &ref
		}
		txn.Entries = append(txn.Entries, entry)
	}
	return txn
}

type balanceResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type postingResponse struct {
	Date         time.Time `json:"date"`
	DocumentType string    `json:"document_type"`
	Reference    string    `json:"reference"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
}

type partyBalanceResponse struct {
	Kind    string `json:"kind"`
	PartyID int64  `json:"party_id"`
	Amount  int64  `json:"amount"`
}

type agingBucketResponse struct {
	AgeLower int   `json:"age_lower"`
	Amount   int64 `json:"amount"`
	Count    int   `json:"count"`
}
