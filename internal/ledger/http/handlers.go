// Package ledgerhttp exposes the ledger engine over HTTP for reconciliation
// services and reporting clients.
package ledgerhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tidewater-fin/tidewater/internal/ledger"
	"github.com/tidewater-fin/tidewater/internal/ledger/accounts"
	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	"github.com/tidewater-fin/tidewater/internal/ledger/journal"
	"github.com/tidewater-fin/tidewater/internal/ledger/reporting"
	"github.com/tidewater-fin/tidewater/internal/money"
	"github.com/tidewater-fin/tidewater/internal/observability"
	"github.com/tidewater-fin/tidewater/internal/platform/httpx"
)

var (
	errBadBasis  = errors.New("basis must be date or due_date")
	errBadBounds = errors.New("bounds must be a comma-separated list of integers")
)

// SyncService is the write-path contract.
type SyncService interface {
	SyncDocument(ctx context.Context, led ledger.Ledger, doc documents.Document, txns []journal.Transaction) error
	VoidDocument(ctx context.Context, led ledger.Ledger, doc documents.Document) error
}

// Directory resolves ledgers by name.
type Directory interface {
	FindOrCreate(ctx context.Context, name, baseCurrency string) (ledger.Ledger, error)
	Find(ctx context.Context, name string) (ledger.Ledger, bool, error)
}

// AccountService is the chart-of-accounts contract.
type AccountService interface {
	FindOrCreate(ctx context.Context, ledgerID int64, name string, typ accounts.Type, currency string) (accounts.Account, error)
	List(ctx context.Context, ledgerID int64) ([]accounts.Account, error)
}

// DocumentService resolves documents by natural key.
type DocumentService interface {
	Get(ctx context.Context, ledgerID int64, ref documents.Ref) (documents.Record, error)
}

// ReportService is the read-path contract.
type ReportService interface {
	PartyBalance(ctx context.Context, led ledger.Ledger, account string, party documents.Party) (money.Money, error)
	DocumentBalance(ctx context.Context, led ledger.Ledger, account string, documentID int64) (money.Money, error)
	DocumentTransactions(ctx context.Context, led ledger.Ledger, account string, documentID int64) ([]reporting.Posting, error)
	PartyBalances(ctx context.Context, led ledger.Ledger, account string) ([]reporting.PartyBalanceRow, error)
	Aging(ctx context.Context, led ledger.Ledger, account string, breakdown reporting.Breakdown) ([]reporting.AgingBucket, error)
}

// Handler serves the ledger API.
type Handler struct {
	logger    *slog.Logger
	directory Directory
	sync      SyncService
	accounts  AccountService
	documents DocumentService
	reports   ReportService
	metrics   *observability.Metrics
	validate  *validator.Validate
}

func NewHandler(logger *slog.Logger, directory Directory, sync SyncService, accountsSvc AccountService, documentsSvc DocumentService, reports ReportService, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		directory: directory,
		sync:      sync,
		accounts:  accountsSvc,
		documents: documentsSvc,
		reports:   reports,
		metrics:   metrics,
		validate:  validator.New(),
	}
}

func (h *Handler) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	var req createLedgerRequest
	if !h.decode(w, r, &req) {
		return
	}
	led, err := h.directory.FindOrCreate(r.Context(), req.Name, req.BaseCurrency)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, led)
}

func (h *Handler) handleFindOrCreateAccount(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, err := h.accounts.FindOrCreate(r.Context(), led.ID, req.Name, accounts.Type(req.Type), req.Currency)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	list, err := h.accounts.List(r.Context(), led.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	var req syncRequest
	if !h.decode(w, r, &req) {
		return
	}
	txns := make([]journal.Transaction, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		txns = append(txns, t.toDomain())
	}
	err := h.sync.SyncDocument(r.Context(), led, req.Document.toDomain(), txns)
	if err != nil {
		h.metrics.RecordSync(req.Document.Type, "error")
		h.logger.Error("sync document",
			slog.String("ledger", led.Name),
			slog.String("doc_type", req.Document.Type),
			slog.String("reference", req.Document.Reference),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.RecordSync(req.Document.Type, "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVoid(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	var req voidRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.sync.VoidDocument(r.Context(), led, req.Document.toDomain()); err != nil {
		h.metrics.RecordSync(req.Document.Type, "error")
		httpx.RespondError(w, err)
		return
	}
	h.metrics.RecordSync(req.Document.Type, "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePartyBalance(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	partyID, err := strconv.ParseInt(chi.URLParam(r, "partyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "party id must be an integer")
		return
	}
	party := documents.Party{Kind: chi.URLParam(r, "kind"), ID: partyID}
	balance, err := h.reports.PartyBalance(r.Context(), led, chi.URLParam(r, "account"), party)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balanceResponse{Amount: balance.Amount, Currency: balance.Currency})
}

func (h *Handler) handlePartyBalances(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	rows, err := h.reports.PartyBalances(r.Context(), led, chi.URLParam(r, "account"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]partyBalanceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, partyBalanceResponse{Kind: row.Party.Kind, PartyID: row.Party.ID, Amount: row.Balance.Amount})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleDocumentBalance(w http.ResponseWriter, r *http.Request) {
	led, rec, ok := h.documentFromPath(w, r)
	if !ok {
		return
	}
	balance, err := h.reports.DocumentBalance(r.Context(), led, chi.URLParam(r, "account"), rec.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balanceResponse{Amount: balance.Amount, Currency: balance.Currency})
}

func (h *Handler) handleDocumentTransactions(w http.ResponseWriter, r *http.Request) {
	led, rec, ok := h.documentFromPath(w, r)
	if !ok {
		return
	}
	postings, err := h.reports.DocumentTransactions(r.Context(), led, chi.URLParam(r, "account"), rec.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]postingResponse, 0, len(postings))
	for _, p := range postings {
		out = append(out, postingResponse{
			Date:         p.Date,
			DocumentType: string(p.DocumentType),
			Reference:    p.Reference,
			Amount:       p.Amount.Amount,
			Currency:     p.Amount.Currency,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return
	}
	breakdown, err := parseBreakdown(r.URL.Query().Get("bounds"), r.URL.Query().Get("basis"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	buckets, err := h.reports.Aging(r.Context(), led, chi.URLParam(r, "account"), breakdown)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]agingBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, agingBucketResponse{AgeLower: b.AgeLower, Amount: b.Amount.Amount, Count: b.Count})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) ledgerFromPath(w http.ResponseWriter, r *http.Request) (ledger.Ledger, bool) {
	name := chi.URLParam(r, "ledger")
	led, found, err := h.directory.Find(r.Context(), name)
	if err != nil {
		httpx.RespondError(w, err)
		return ledger.Ledger{}, false
	}
	if !found {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "ledger "+name+" not found")
		return ledger.Ledger{}, false
	}
	return led, true
}

func (h *Handler) documentFromPath(w http.ResponseWriter, r *http.Request) (ledger.Ledger, documents.Record, bool) {
	led, ok := h.ledgerFromPath(w, r)
	if !ok {
		return ledger.Ledger{}, documents.Record{}, false
	}
	ref := documents.Ref{
		Type:      documents.Type(chi.URLParam(r, "type")),
		Reference: chi.URLParam(r, "reference"),
	}
	rec, err := h.documents.Get(r.Context(), led.ID, ref)
	if err != nil {
		httpx.RespondError(w, err)
		return ledger.Ledger{}, documents.Record{}, false
	}
	return led, rec, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func parseBreakdown(bounds, basis string) (reporting.Breakdown, error) {
	breakdown := reporting.Breakdown{Basis: reporting.Basis(basis)}
	if breakdown.Basis == "" {
		breakdown.Basis = reporting.BasisDate
	}
	if breakdown.Basis != reporting.BasisDate && breakdown.Basis != reporting.BasisDueDate {
		return reporting.Breakdown{}, errBadBasis
	}
	for _, part := range strings.Split(bounds, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return reporting.Breakdown{}, errBadBounds
		}
		breakdown.Bounds = append(breakdown.Bounds, n)
	}
	return breakdown, nil
}
