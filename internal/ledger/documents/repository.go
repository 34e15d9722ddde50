package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
)

// Repository defines document registry data access.
type Repository interface {
	GetOrCreate(ctx context.Context, ledgerID int64, doc Document) (Record, error)
	Get(ctx context.Context, ledgerID int64, ref Ref) (Record, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, ledger_id, doc_type, reference, party_kind, party_id, doc_date, due_date, number, created_at, updated_at`

// GetOrCreate inserts the document and falls back to a fetch when the unique
// constraint on (ledger_id, doc_type, reference) fires, so two concurrent
// callers always converge on the same internal id. Metadata of an existing
// document is left untouched here; SyncDocument refreshes it.
func (r *repository) GetOrCreate(ctx context.Context, ledgerID int64, doc Document) (Record, error) {
	if !doc.Type.Valid() || doc.Reference == "" {
		return Record{}, shared.ErrInvalidDocument
	}
	row := r.db.QueryRow(ctx, `INSERT INTO documents (ledger_id, doc_type, reference, party_kind, party_id, doc_date, due_date, number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+selectColumns,
		ledgerID, doc.Type, doc.Reference, doc.Party.Kind, doc.Party.ID, doc.Date, doc.DueDate, doc.Number)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return r.Get(ctx, ledgerID, doc.Ref())
	}
	return Record{}, err
}

func (r *repository) Get(ctx context.Context, ledgerID int64, ref Ref) (Record, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM documents WHERE ledger_id=$1 AND doc_type=$2 AND reference=$3`,
		ledgerID, ref.Type, ref.Reference)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrDocumentNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.LedgerID, &rec.Type, &rec.Reference, &rec.Party.Kind, &rec.Party.ID,
		&rec.Date, &rec.DueDate, &rec.Number, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}
