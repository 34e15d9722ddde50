package ledgerhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tidewater-fin/tidewater/internal/ledger"
	"github.com/tidewater-fin/tidewater/internal/ledger/accounts"
	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/journal"
	"github.com/tidewater-fin/tidewater/internal/ledger/reporting"
	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/money"
)

type stubDirectory struct {
	ledgers map[string]ledger.Ledger
}

func (s *stubDirectory) FindOrCreate(ctx context.Context, name, baseCurrency string) (ledger.Ledger, error) {
	if led, ok := s.ledgers[name]; ok {
		return led, nil
	}
	led := ledger.Ledger{ID: int64(len(s.ledgers) + 1), Name: name, BaseCurrency: baseCurrency}
	s.ledgers[name] = led
	return led, nil
}

func (s *stubDirectory) Find(ctx context.Context, name string) (ledger.Ledger, bool, error) {
	led, ok := s.ledgers[name]
	return led, ok, nil
}

type stubSync struct {
	err      error
	lastDoc  documents.Document
	lastTxns []journal.Transaction
	voided   bool
}

func (s *stubSync) SyncDocument(ctx context.Context, led ledger.Ledger, doc documents.Document, txns []journal.Transaction) error {
	s.lastDoc = doc
	s.lastTxns = txns
	return s.err
}

func (s *stubSync) VoidDocument(ctx context.Context, led ledger.Ledger, doc documents.Document) error {
	s.lastDoc = doc
	s.voided = true
	return s.err
}

type stubAccounts struct {
	created []accounts.Account
}

func (s *stubAccounts) FindOrCreate(ctx context.Context, ledgerID int64, name string, typ accounts.Type, currency string) (accounts.Account, error) {
	acc := accounts.Account{ID: int64(len(s.created) + 1), LedgerID: ledgerID, Name: name, Type: typ, Currency: currency}
	s.created = append(s.created, acc)
	return acc, nil
}

func (s *stubAccounts) List(ctx context.Context, ledgerID int64) ([]accounts.Account, error) {
	return s.created, nil
}

type stubDocuments struct {
	records map[documents.Ref]documents.Record
}

func (s *stubDocuments) Get(ctx context.Context, ledgerID int64, ref documents.Ref) (documents.Record, error) {
	rec, ok := s.records[ref]
	if !ok {
		return documents.Record{}, shared.ErrDocumentNotFound
	}
	return rec, nil
}

type stubReports struct {
	balance       money.Money
	postings      []reporting.Posting
	partyRows     []reporting.PartyBalanceRow
	buckets       []reporting.AgingBucket
	lastBreakdown reporting.Breakdown
	err           error
}

func (s *stubReports) PartyBalance(ctx context.Context, led ledger.Ledger, account string, party documents.Party) (money.Money, error) {
	return s.balance, s.err
}

func (s *stubReports) DocumentBalance(ctx context.Context, led ledger.Ledger, account string, documentID int64) (money.Money, error) {
	return s.balance, s.err
}

func (s *stubReports) DocumentTransactions(ctx context.Context, led ledger.Ledger, account string, documentID int64) ([]reporting.Posting, error) {
	return s.postings, s.err
}

func (s *stubReports) PartyBalances(ctx context.Context, led ledger.Ledger, account string) ([]reporting.PartyBalanceRow, error) {
	return s.partyRows, s.err
}

func (s *stubReports) Aging(ctx context.Context, led ledger.Ledger, account string, breakdown reporting.Breakdown) ([]reporting.AgingBucket, error) {
	s.lastBreakdown = breakdown
	return s.buckets, s.err
}

type fixture struct {
	router    chi.Router
	sync      *stubSync
	documents *stubDocuments
	reports   *stubReports
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	directory := &stubDirectory{ledgers: map[string]ledger.Ledger{
		"Accounts Payable - 42": {ID: 1, Name: "Accounts Payable - 42", BaseCurrency: "USD"},
	}}
	sync := &stubSync{}
	docs := &stubDocuments{records: map[documents.Ref]documents.Record{
		{Type: documents.TypeInvoice, Reference: "bill-9"}: {ID: 11, LedgerID: 1},
	}}
	reports := &stubReports{balance: money.Money{Amount: -100000, Currency: "USD"}}
	handler := NewHandler(nil, directory, sync, &stubAccounts{}, docs, reports, nil)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return &fixture{router: router, sync: sync, documents: docs, reports: reports}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	// httptest.NewRequest builds an HTTP/1.0 request line, so a literal
	// space in the path is unparseable; %20 yields the same URL.Path.
	path = strings.ReplaceAll(path, " ", "%20")
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestSyncDocumentReturnsNoContent(t *testing.T) {
	f := newFixture(t)
	body := `{
		"document": {"type": "INVOICE", "reference": "bill-9", "party": {"kind": "vendor", "id": 7}, "date": "2026-03-01T00:00:00Z"},
		"transactions": [{
			"date": "2026-03-01T00:00:00Z",
			"currency": "USD",
			"entries": [
				{"account": "Expenses", "side": "DEBIT", "amount": 100000},
				{"account": "AccountsPayable", "side": "CREDIT", "amount": 100000}
			]
		}]
	}`
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers/Accounts Payable - 42/documents/sync", body)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if f.sync.lastDoc.Reference != "bill-9" {
		t.Fatalf("expected document to reach the service, got %+v", f.sync.lastDoc)
	}
	if len(f.sync.lastTxns) != 1 || len(f.sync.lastTxns[0].Entries) != 2 {
		t.Fatalf("unexpected transactions: %+v", f.sync.lastTxns)
	}
}

func TestSyncUnbalancedMapsToUnprocessable(t *testing.T) {
	f := newFixture(t)
	f.sync.err = shared.ErrUnbalanced
	body := `{
		"document": {"type": "INVOICE", "reference": "bill-9", "date": "2026-03-01T00:00:00Z"},
		"transactions": [{
			"date": "2026-03-01T00:00:00Z",
			"currency": "USD",
			"entries": [{"account": "Expenses", "side": "DEBIT", "amount": 100000}]
		}]
	}`
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers/Accounts Payable - 42/documents/sync", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestSyncUnknownLedgerReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	body := `{"document": {"type": "INVOICE", "reference": "bill-9", "date": "2026-03-01T00:00:00Z"}}`
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers/nope/documents/sync", body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSyncRejectsInvalidBody(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers/Accounts Payable - 42/documents/sync", `{"document": {"type": "INVOICE"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing reference, got %d", rr.Code)
	}
}

func TestVoidDocumentReturnsNoContent(t *testing.T) {
	f := newFixture(t)
	body := `{"document": {"type": "INVOICE", "reference": "bill-9", "date": "2026-03-01T00:00:00Z"}}`
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers/Accounts Payable - 42/documents/void", body)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if !f.sync.voided {
		t.Fatal("expected void to reach the service")
	}
}

func TestDocumentBalanceResolvesNaturalKey(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/v1/ledgers/Accounts Payable - 42/accounts/AccountsPayable/documents/INVOICE/bill-9", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"amount":-100000`) {
		t.Fatalf("expected balance in body, got: %s", rr.Body.String())
	}
}

func TestDocumentBalanceUnknownDocumentReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/v1/ledgers/Accounts Payable - 42/accounts/AccountsPayable/documents/INVOICE/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAgingParsesQueryParameters(t *testing.T) {
	f := newFixture(t)
	f.reports.buckets = []reporting.AgingBucket{{AgeLower: 0, Amount: money.Money{Amount: -100000, Currency: "USD"}, Count: 1}}
	rr := f.do(t, http.MethodGet, "/api/v1/ledgers/Accounts Payable - 42/accounts/AccountsPayable/aging?basis=due_date&bounds=-1,0,7,14,30,60", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if f.reports.lastBreakdown.Basis != reporting.BasisDueDate {
		t.Fatalf("expected due_date basis, got %q", f.reports.lastBreakdown.Basis)
	}
	want := []int{-1, 0, 7, 14, 30, 60}
	if len(f.reports.lastBreakdown.Bounds) != len(want) {
		t.Fatalf("expected bounds %v, got %v", want, f.reports.lastBreakdown.Bounds)
	}
	for i, b := range want {
		if f.reports.lastBreakdown.Bounds[i] != b {
			t.Fatalf("expected bounds %v, got %v", want, f.reports.lastBreakdown.Bounds)
		}
	}
}

func TestAgingRejectsUnknownBasis(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/v1/ledgers/Accounts Payable - 42/accounts/AccountsPayable/aging?basis=posted&bounds=0,30", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPartyBalanceRejectsNonNumericID(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/v1/ledgers/Accounts Payable - 42/accounts/AccountsPayable/parties/vendor/abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateLedgerReturnsLedger(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/v1/ledgers", `{"name": "Accounts Receivable - 42", "base_currency": "USD"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Accounts Receivable - 42") {
		t.Fatalf("expected ledger in body, got: %s", rr.Body.String())
	}
}
