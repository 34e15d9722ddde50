package accounts

import (
	"context"
	"errors"

	"github.com/tidewater-fin/tidewater/internal/money"
)

var errInvalidType = errors.New("ledger: invalid account type")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindOrCreate registers an account name, validating type and currency first.
func (s *Service) FindOrCreate(ctx context.Context, ledgerID int64, name string, typ Type, currencyCode string) (Account, error) {
	if !typ.Valid() {
		return Account{}, errInvalidType
	}
	normalized, err := money.NormalizeCurrency(currencyCode)
	if err != nil {
		return Account{}, err
	}
	return s.repo.FindOrCreate(ctx, ledgerID, name, typ, normalized)
}

// List returns the ledger's chart of accounts ordered by name.
func (s *Service) List(ctx context.Context, ledgerID int64) ([]Account, error) {
	return s.repo.List(ctx, ledgerID)
}
