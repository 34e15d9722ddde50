package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
)

// Repository defines the read queries over stored entries. Every query reads
// the live journal, so results always reflect the latest sync or void.
type Repository interface {
	PartyBalance(ctx context.Context, ledgerID, accountID int64, party documents.Party) (int64, error)
	DocumentBalance(ctx context.Context, ledgerID, accountID, documentID int64) (int64, error)
	DocumentPostings(ctx context.Context, ledgerID, accountID, documentID int64) ([]PostingRow, error)
	PartyBalances(ctx context.Context, ledgerID, accountID int64) ([]PartyBalanceRow, error)
	OpenDocuments(ctx context.Context, ledgerID, accountID int64) ([]OpenDocument, error)
}

// PostingRow is the raw document-history row as stored.
type PostingRow struct {
	Date         time.Time
	DocumentType documents.Type
	Reference    string
	Amount       int64
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const signedAmount = `CASE WHEN e.side='DEBIT' THEN e.amount ELSE -e.amount END`

func (r *repository) PartyBalance(ctx context.Context, ledgerID, accountID int64, party documents.Party) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(`+signedAmount+`), 0)
FROM ledger_entries e WHERE e.ledger_id=$1 AND e.account_id=$2 AND e.party_kind=$3 AND e.party_id=$4`,
		ledgerID, accountID, party.Kind, party.ID).Scan(&balance)
	return balance, err
}

func (r *repository) DocumentBalance(ctx context.Context, ledgerID, accountID, documentID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(`+signedAmount+`), 0)
FROM ledger_entries e WHERE e.ledger_id=$1 AND e.account_id=$2 AND e.document_id=$3`,
		ledgerID, accountID, documentID).Scan(&balance)
	return balance, err
}

func (r *repository) DocumentPostings(ctx context.Context, ledgerID, accountID, documentID int64) ([]PostingRow, error) {
	rows, err := r.db.Query(ctx, `SELECT t.txn_date, d.doc_type, d.reference, `+signedAmount+`
FROM ledger_entries e
JOIN ledger_transactions t ON t.id = e.transaction_id
JOIN documents d ON d.id = t.document_id
WHERE e.ledger_id=$1 AND e.account_id=$2 AND e.document_id=$3
ORDER BY t.txn_date, e.id`, ledgerID, accountID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PostingRow
	for rows.Next() {
		var p PostingRow
		if err := rows.Scan(&p.Date, &p.DocumentType, &p.Reference, &p.Amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) PartyBalances(ctx context.Context, ledgerID, accountID int64) ([]PartyBalanceRow, error) {
	rows, err := r.db.Query(ctx, `SELECT e.party_kind, e.party_id, COALESCE(SUM(`+signedAmount+`), 0)
FROM ledger_entries e
WHERE e.ledger_id=$1 AND e.account_id=$2 AND NOT (e.party_kind='' AND e.party_id=0)
GROUP BY e.party_kind, e.party_id
ORDER BY e.party_id, e.party_kind`, ledgerID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PartyBalanceRow
	for rows.Next() {
		var row PartyBalanceRow
		if err := rows.Scan(&row.Party.Kind, &row.Party.ID, &row.Balance.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) OpenDocuments(ctx context.Context, ledgerID, accountID int64) ([]OpenDocument, error) {
	rows, err := r.db.Query(ctx, `SELECT e.document_id, d.doc_date, d.due_date, SUM(`+signedAmount+`) AS balance
FROM ledger_entries e
JOIN documents d ON d.id = e.document_id
WHERE e.ledger_id=$1 AND e.account_id=$2
GROUP BY e.document_id, d.doc_date, d.due_date
HAVING SUM(`+signedAmount+`) <> 0`, ledgerID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OpenDocument
	for rows.Next() {
		var doc OpenDocument
		if err := rows.Scan(&doc.DocumentID, &doc.Date, &doc.DueDate, &doc.Balance); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
