package reporting

import (
	"context"
	"time"

	"github.com/tidewater-fin/tidewater/internal/ledger"
	"github.com/tidewater-fin/tidewater/internal/ledger/accounts"
	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/money"
)

// Service answers the derived read queries: running balances by party and
// document, document history, and aging. Balances are signed sums of
// debits minus credits in the ledger base currency.
type Service struct {
	repo     Repository
	accounts accounts.Repository
	now      func() time.Time
}

func NewService(repo Repository, accountsRepo accounts.Repository) *Service {
	return &Service{repo: repo, accounts: accountsRepo, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) accountID(ctx context.Context, led ledger.Ledger, name string) (int64, error) {
	acc, err := s.accounts.FindByName(ctx, led.ID, name)
	if err != nil {
		return 0, err
	}
	return acc.ID, nil
}

// PartyBalance returns the running balance of all entries posted to the
// account for the party. Zero if the party never posted.
func (s *Service) PartyBalance(ctx context.Context, led ledger.Ledger, account string, party documents.Party) (money.Money, error) {
	accountID, err := s.accountID(ctx, led, account)
	if err != nil {
		return money.Money{}, err
	}
	balance, err := s.repo.PartyBalance(ctx, led.ID, accountID, party)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: balance, Currency: led.BaseCurrency}, nil
}

// DocumentBalance returns the running balance of all currently stored
// entries targeting the document on the account.
func (s *Service) DocumentBalance(ctx context.Context, led ledger.Ledger, account string, documentID int64) (money.Money, error) {
	accountID, err := s.accountID(ctx, led, account)
	if err != nil {
		return money.Money{}, err
	}
	balance, err := s.repo.DocumentBalance(ctx, led.ID, accountID, documentID)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: balance, Currency: led.BaseCurrency}, nil
}

// DocumentTransactions lists the postings to the account targeting the
// document, ordered by transaction date with insertion order as tie-break.
// Empty after a void.
func (s *Service) DocumentTransactions(ctx context.Context, led ledger.Ledger, account string, documentID int64) ([]Posting, error) {
	accountID, err := s.accountID(ctx, led, account)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.DocumentPostings(ctx, led.ID, accountID, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]Posting, 0, len(rows))
	for _, row := range rows {
		out = append(out, Posting{
			Date:         row.Date,
			DocumentType: row.DocumentType,
			Reference:    row.Reference,
			Amount:       money.Money{Amount: row.Amount, Currency: led.BaseCurrency},
		})
	}
	return out, nil
}

// PartyBalances returns one row per party with stored activity on the
// account, ascending by party id. A party stays listed while any non-deleted
// entry of theirs remains, even at a net-zero balance; voiding deletes the
// entries and drops the party.
func (s *Service) PartyBalances(ctx context.Context, led ledger.Ledger, account string) ([]PartyBalanceRow, error) {
	accountID, err := s.accountID(ctx, led, account)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.PartyBalances(ctx, led.ID, accountID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Balance.Currency = led.BaseCurrency
	}
	return rows, nil
}

// Aging buckets every open document balance on the account by
// floor(days between basis date and today). Each document lands in the
// largest bucket whose lower bound does not exceed its age; ages below the
// first bound (not yet due, or no due date on a due-date basis) clamp into
// the first bucket, and ages beyond the last bound roll into the last.
// Exactly one row per configured bound is returned, in ascending order.
func (s *Service) Aging(ctx context.Context, led ledger.Ledger, account string, breakdown Breakdown) ([]AgingBucket, error) {
	if len(breakdown.Bounds) == 0 {
		return nil, shared.ErrInvalidBreakdown
	}
	for i := 1; i < len(breakdown.Bounds); i++ {
		if breakdown.Bounds[i] <= breakdown.Bounds[i-1] {
			return nil, shared.ErrInvalidBreakdown
		}
	}
	accountID, err := s.accountID(ctx, led, account)
	if err != nil {
		return nil, err
	}
	open, err := s.repo.OpenDocuments(ctx, led.ID, accountID)
	if err != nil {
		return nil, err
	}

	buckets := make([]AgingBucket, len(breakdown.Bounds))
	for i, lower := range breakdown.Bounds {
		buckets[i] = AgingBucket{AgeLower: lower, Amount: money.Money{Currency: led.BaseCurrency}}
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	for _, doc := range open {
		idx := 0
		if age, ok := documentAge(doc, breakdown.Basis, today); ok {
			idx = bucketIndex(breakdown.Bounds, age)
		}
		buckets[idx].Amount.Amount += doc.Balance
		buckets[idx].Count++
	}
	return buckets, nil
}

// documentAge returns the document's age in whole days on the given basis.
// ok is false when the basis date is unknown (no due date).
func documentAge(doc OpenDocument, basis Basis, today time.Time) (int, bool) {
	var from time.Time
	switch basis {
	case BasisDueDate:
		if doc.DueDate == nil {
			return 0, false
		}
		from = *doc.DueDate
	default:
		from = doc.Date
	}
	return int(today.Sub(from.UTC().Truncate(24 * time.Hour)).Hours() / 24), true
}

// bucketIndex returns the index of the largest bound <= age, clamped to the
// first bucket for ages below every bound.
func bucketIndex(bounds []int, age int) int {
	idx := 0
	for i, lower := range bounds {
		if age >= lower {
			idx = i
		}
	}
	return idx
}
