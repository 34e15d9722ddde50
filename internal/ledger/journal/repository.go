package journal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/platform/db"
)

// Repository encapsulates DB operations for the transaction journal.
type Repository interface {
	ListByDocument(ctx context.Context, ledgerID, documentID int64) ([]StoredTransaction, error)
	// Mutations run inside a single storage transaction.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations a document sync needs atomically.
// Document and account lookups are repeated here from their own packages
// because they must run on the same transaction as the replace.
type TxRepository interface {
	GetOrCreateDocument(ctx context.Context, ledgerID int64, doc documents.Document) (documents.Record, error)
	RefreshDocumentMetadata(ctx context.Context, documentID int64, doc documents.Document) error
	FindAccountIDs(ctx context.Context, ledgerID int64, names []string) (map[string]int64, error)
	DeleteDocumentTransactions(ctx context.Context, documentID int64) error
	InsertTransaction(ctx context.Context, ledgerID, documentID int64, posting Posting) (int64, error)
	InsertEntries(ctx context.Context, ledgerID, transactionID int64, entries []PostingEntry) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) ListByDocument(ctx context.Context, ledgerID, documentID int64) ([]StoredTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT id, ledger_id, document_id, txn_date, currency, description, created_at
FROM ledger_transactions WHERE ledger_id=$1 AND document_id=$2 ORDER BY txn_date, id`, ledgerID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txns []StoredTransaction
	for rows.Next() {
		var t StoredTransaction
		if err := rows.Scan(&t.ID, &t.LedgerID, &t.DocumentID, &t.Date, &t.Currency, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range txns {
		entries, err := r.listEntries(ctx, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].Entries = entries
	}
	return txns, nil
}

func (r *repository) listEntries(ctx context.Context, transactionID int64) ([]StoredEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, transaction_id, account_id, document_id, party_kind, party_id, side, amount, original_amount, original_currency, created_at
FROM ledger_entries WHERE transaction_id=$1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []StoredEntry
	for rows.Next() {
		var e StoredEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.DocumentID, &e.Party.Kind, &e.Party.ID,
			&e.Amount.Side, &e.Amount.Amount, &e.Amount.OriginalAmount, &e.Amount.OriginalCurrency, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

const documentColumns = `id, ledger_id, doc_type, reference, party_kind, party_id, doc_date, due_date, number, created_at, updated_at`

func (r *txRepository) GetOrCreateDocument(ctx context.Context, ledgerID int64, doc documents.Document) (documents.Record, error) {
	if !doc.Type.Valid() || doc.Reference == "" {
		return documents.Record{}, shared.ErrInvalidDocument
	}
	rec, err := r.scanDocument(r.tx.QueryRow(ctx, `INSERT INTO documents (ledger_id, doc_type, reference, party_kind, party_id, doc_date, due_date, number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (ledger_id, doc_type, reference) DO NOTHING RETURNING `+documentColumns,
		ledgerID, doc.Type, doc.Reference, doc.Party.Kind, doc.Party.ID, doc.Date, doc.DueDate, doc.Number))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return documents.Record{}, err
	}
	// Conflict path: the row already exists, fetch it.
	return r.scanDocument(r.tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE ledger_id=$1 AND doc_type=$2 AND reference=$3`,
		ledgerID, doc.Type, doc.Reference))
}

func (r *txRepository) scanDocument(row pgx.Row) (documents.Record, error) {
	var rec documents.Record
	err := row.Scan(&rec.ID, &rec.LedgerID, &rec.Type, &rec.Reference, &rec.Party.Kind, &rec.Party.ID,
		&rec.Date, &rec.DueDate, &rec.Number, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return documents.Record{}, err
	}
	return rec, nil
}

func (r *txRepository) RefreshDocumentMetadata(ctx context.Context, documentID int64, doc documents.Document) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE documents SET party_kind=$2, party_id=$3, doc_date=$4, due_date=$5, number=$6, updated_at=NOW() WHERE id=$1`,
		documentID, doc.Party.Kind, doc.Party.ID, doc.Date, doc.DueDate, doc.Number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) FindAccountIDs(ctx context.Context, ledgerID int64, names []string) (map[string]int64, error) {
	rows, err := r.tx.Query(ctx, `SELECT name, id FROM accounts WHERE ledger_id=$1 AND name = ANY($2)`, ledgerID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64, len(names))
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

func (r *txRepository) DeleteDocumentTransactions(ctx context.Context, documentID int64) error {
	// Entries cascade via FK on transaction_id.
	_, err := r.tx.Exec(ctx, `DELETE FROM ledger_transactions WHERE document_id=$1`, documentID)
	return err
}

func (r *txRepository) InsertTransaction(ctx context.Context, ledgerID, documentID int64, posting Posting) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_transactions (ledger_id, document_id, txn_date, currency, description)
VALUES ($1,$2,$3,$4,$5) RETURNING id`, ledgerID, documentID, posting.Date, posting.Currency, posting.Description).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, shared.ErrDocumentNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, ledgerID, transactionID int64, entries []PostingEntry) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO ledger_entries (ledger_id, transaction_id, account_id, document_id, party_kind, party_id, side, amount, original_amount, original_currency)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			ledgerID, transactionID, e.AccountID, e.DocumentID, e.Party.Kind, e.Party.ID,
			e.Amount.Side, e.Amount.Amount, e.Amount.OriginalAmount, e.Amount.OriginalCurrency); err != nil {
			return err
		}
	}
	return nil
}
