package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
)

// Repository defines chart of accounts data access.
type Repository interface {
	FindOrCreate(ctx context.Context, ledgerID int64, name string, typ Type, currency string) (Account, error)
	FindByName(ctx context.Context, ledgerID int64, name string) (Account, error)
	List(ctx context.Context, ledgerID int64) ([]Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// FindOrCreate is idempotent for a name. Re-registering an existing name with
// a different type or currency returns ErrAccountConflict and never mutates
// the stored account.
func (r *repository) FindOrCreate(ctx context.Context, ledgerID int64, name string, typ Type, currency string) (Account, error) {
	existing, err := r.FindByName(ctx, ledgerID, name)
	if err == nil {
		if existing.Type != typ || existing.Currency != currency {
			return Account{}, shared.ErrAccountConflict
		}
		return existing, nil
	}
	if !errors.Is(err, shared.ErrAccountNotFound) {
		return Account{}, err
	}
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (ledger_id, name, type, currency) VALUES ($1,$2,$3,$4)
RETURNING id, ledger_id, name, type, currency, created_at, updated_at`, ledgerID, name, typ, currency)
	acc, err := scanAccount(row)
	if err == nil {
		return acc, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Lost the race; the winner's type/currency still has to match.
		existing, err := r.FindByName(ctx, ledgerID, name)
		if err != nil {
			return Account{}, err
		}
		if existing.Type != typ || existing.Currency != currency {
			return Account{}, shared.ErrAccountConflict
		}
		return existing, nil
	}
	return Account{}, err
}

func (r *repository) FindByName(ctx context.Context, ledgerID int64, name string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, ledger_id, name, type, currency, created_at, updated_at
FROM accounts WHERE ledger_id=$1 AND name=$2`, ledgerID, name)
	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

func (r *repository) List(ctx context.Context, ledgerID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, ledger_id, name, type, currency, created_at, updated_at
FROM accounts WHERE ledger_id=$1 ORDER BY name`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.LedgerID, &a.Name, &a.Type, &a.Currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.LedgerID, &a.Name, &a.Type, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}
