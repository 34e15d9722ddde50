package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
)

// Repository manages ledger records. Find treats a missing name as an empty
// result, not an error; the caller decides whether to create.
type Repository interface {
	Find(ctx context.Context, name string) (Ledger, bool, error)
	Create(ctx context.Context, name, baseCurrency string) (Ledger, error)
	List(ctx context.Context) ([]Ledger, error)
	// NetBalance sums signed entry amounts across the whole ledger. A healthy
	// double-entry ledger always nets to zero.
	NetBalance(ctx context.Context, ledgerID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, name string) (Ledger, bool, error) {
	var l Ledger
	err := r.db.QueryRow(ctx, `SELECT id, name, base_currency, created_at, updated_at FROM ledgers WHERE name=$1`, name).
		Scan(&l.ID, &l.Name, &l.BaseCurrency, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, false, nil
		}
		return Ledger{}, false, err
	}
	return l, true, nil
}

func (r *repository) Create(ctx context.Context, name, baseCurrency string) (Ledger, error) {
	var l Ledger
	err := r.db.QueryRow(ctx, `INSERT INTO ledgers (name, base_currency) VALUES ($1,$2)
RETURNING id, name, base_currency, created_at, updated_at`, name, baseCurrency).
		Scan(&l.ID, &l.Name, &l.BaseCurrency, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Ledger{}, shared.ErrLedgerExists
		}
		return Ledger{}, err
	}
	return l, nil
}

func (r *repository) List(ctx context.Context) ([]Ledger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, base_currency, created_at, updated_at FROM ledgers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.Name, &l.BaseCurrency, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) NetBalance(ctx context.Context, ledgerID int64) (int64, error) {
	var net int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(CASE WHEN side='DEBIT' THEN amount ELSE -amount END), 0)
FROM ledger_entries WHERE ledger_id=$1`, ledgerID).Scan(&net)
	return net, err
}
