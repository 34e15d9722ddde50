package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/journal"
	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/money"
)

// Converter turns an amount in one currency into another at a dated rate.
type Converter interface {
	Convert(ctx context.Context, from, to string, date time.Time, amount int64) (int64, error)
}

// Service is the write-path facade. Reconciliation services describe the
// current financial effect of a source document and call SyncDocument on
// every relevant mutation; the stored state always mirrors the latest call.
type Service struct {
	journal journal.Repository
	fx      Converter
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(journalRepo journal.Repository, fx Converter, logger *slog.Logger) *Service {
	return &Service{journal: journalRepo, fx: fx, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SyncDocument atomically replaces the document's stored transactions with
// the supplied set. Calling it twice with different sets leaves exactly the
// second set stored, with no residue from the first; an empty set is a void.
func (s *Service) SyncDocument(ctx context.Context, led Ledger, doc documents.Document, txns []journal.Transaction) error {
	if !doc.Type.Valid() || doc.Reference == "" {
		return shared.ErrInvalidDocument
	}
	prepared, err := s.prepare(ctx, led, txns)
	if err != nil {
		return err
	}
	err = s.journal.WithTx(ctx, func(ctx context.Context, tx journal.TxRepository) error {
		rec, err := tx.GetOrCreateDocument(ctx, led.ID, doc)
		if err != nil {
			return err
		}
		if err := tx.RefreshDocumentMetadata(ctx, rec.ID, doc); err != nil {
			return err
		}
		postings, err := s.resolve(ctx, tx, led, rec, prepared)
		if err != nil {
			return err
		}
		if err := tx.DeleteDocumentTransactions(ctx, rec.ID); err != nil {
			return err
		}
		for _, posting := range postings {
			txnID, err := tx.InsertTransaction(ctx, led.ID, rec.ID, posting)
			if err != nil {
				return err
			}
			if err := tx.InsertEntries(ctx, led.ID, txnID, posting.Entries); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("document synced",
			slog.String("ledger", led.Name),
			slog.String("doc_type", string(doc.Type)),
			slog.String("reference", doc.Reference),
			slog.Int("transactions", len(prepared)))
	}
	return nil
}

// VoidDocument removes the document's financial effect while preserving its
// identity, so balances read zero and a later sync reuses the same id.
func (s *Service) VoidDocument(ctx context.Context, led Ledger, doc documents.Document) error {
	return s.SyncDocument(ctx, led, doc, nil)
}

// preparedEntry is an entry with its amount converted but account name and
// target ref not yet resolved to ids.
type preparedEntry struct {
	account   string
	party     documents.Party
	appliesTo *documents.Ref
	amount    money.SignedAmount
}

type preparedTxn struct {
	date        time.Time
	currency    string
	description string
	entries     []preparedEntry
}

// prepare converts and validates every transaction before any write happens,
// so an unbalanced set or a missing rate is rejected with nothing applied.
func (s *Service) prepare(ctx context.Context, led Ledger, txns []journal.Transaction) ([]preparedTxn, error) {
	out := make([]preparedTxn, 0, len(txns))
	for i, t := range txns {
		effective := t.Effective()
		if len(effective) == 0 {
			continue
		}
		cur, err := money.NormalizeCurrency(t.Currency)
		if err != nil {
			return nil, err
		}
		p := preparedTxn{date: t.Date, currency: cur, description: t.Description, entries: make([]preparedEntry, 0, len(effective))}
		var net int64
		for _, e := range effective {
			if !e.Side.Valid() {
				return nil, shared.ErrInvalidSide
			}
			if e.Account == "" {
				return nil, fmt.Errorf("%w: transaction %d has an entry without an account", shared.ErrAccountNotFound, i)
			}
			converted, err := s.fx.Convert(ctx, cur, led.BaseCurrency, t.Date, e.Amount)
			if err != nil {
				return nil, err
			}
			amount := money.SignedAmount{Side: e.Side, Amount: converted, OriginalAmount: e.Amount, OriginalCurrency: cur}
			var party documents.Party
			if e.Party != nil {
				party = *e.Party
			}
			p.entries = append(p.entries, preparedEntry{account: e.Account, party: party, appliesTo: e.AppliesTo, amount: amount})
			net += amount.Effect()
		}
		if net != 0 {
			return nil, fmt.Errorf("%w: transaction %d nets %d", shared.ErrUnbalanced, i, net)
		}
		out = append(out, p)
	}
	return out, nil
}

// resolve maps account names and applies-to refs to ids inside the sync
// transaction. An entry without an explicit target counts against the synced
// document itself.
func (s *Service) resolve(ctx context.Context, tx journal.TxRepository, led Ledger, owner documents.Record, prepared []preparedTxn) ([]journal.Posting, error) {
	nameSet := make(map[string]struct{})
	for _, p := range prepared {
		for _, e := range p.entries {
			nameSet[e.account] = struct{}{}
		}
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	var accountIDs map[string]int64
	if len(names) > 0 {
		var err error
		accountIDs, err = tx.FindAccountIDs(ctx, led.ID, names)
		if err != nil {
			return nil, err
		}
	}
	targets := make(map[documents.Ref]int64)
	postings := make([]journal.Posting, 0, len(prepared))
	for _, p := range prepared {
		posting := journal.Posting{Date: p.date, Currency: p.currency, Description: p.description, Entries: make([]journal.PostingEntry, 0, len(p.entries))}
		for _, e := range p.entries {
			accountID, ok := accountIDs[e.account]
			if !ok {
				return nil, fmt.Errorf("%w: %q", shared.ErrAccountNotFound, e.account)
			}
			targetID := owner.ID
			if e.appliesTo != nil && *e.appliesTo != owner.Ref() {
				id, ok := targets[*e.appliesTo]
				if !ok {
					rec, err := tx.GetOrCreateDocument(ctx, led.ID, documents.Document{
						Type:      e.appliesTo.Type,
						Reference: e.appliesTo.Reference,
						Date:      p.date,
					})
					if err != nil {
						return nil, err
					}
					id = rec.ID
					targets[*e.appliesTo] = id
				}
				targetID = id
			}
			posting.Entries = append(posting.Entries, journal.PostingEntry{
				AccountID:  accountID,
				DocumentID: targetID,
				Party:      e.party,
				Amount:     e.amount,
			})
		}
		if err := journal.ValidateBalanced(posting.Entries); err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

// Registry looks ledgers up by name with a process-local cache scoped to the
// registry instance. Ledger names embed the scope, so cached entries never
// cross tenant boundaries.
type Registry struct {
	repo   Repository
	mu     sync.RWMutex
	byName map[string]Ledger
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo, byName: make(map[string]Ledger)}
}

// FindOrCreate returns the ledger for name, creating it with baseCurrency on
// first use. Accounts and base currency never change afterwards.
func (r *Registry) FindOrCreate(ctx context.Context, name, baseCurrency string) (Ledger, error) {
	r.mu.RLock()
	cached, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}
	normalized, err := money.NormalizeCurrency(baseCurrency)
	if err != nil {
		return Ledger{}, err
	}
	led, found, err := r.repo.Find(ctx, name)
	if err != nil {
		return Ledger{}, err
	}
	if !found {
		led, err = r.repo.Create(ctx, name, normalized)
		if errors.Is(err, shared.ErrLedgerExists) {
			// Concurrent creation; the stored row wins.
			led, found, err = r.repo.Find(ctx, name)
			if err == nil && !found {
				err = shared.ErrLedgerNotFound
			}
		}
		if err != nil {
			return Ledger{}, err
		}
	}
	r.mu.Lock()
	r.byName[name] = led
	r.mu.Unlock()
	return led, nil
}

// Find returns the ledger for name when it exists.
func (r *Registry) Find(ctx context.Context, name string) (Ledger, bool, error) {
	r.mu.RLock()
	cached, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return cached, true, nil
	}
	return r.repo.Find(ctx, name)
}
