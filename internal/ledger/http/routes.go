package ledgerhttp

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the ledger API under /api/v1/ledgers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/v1/ledgers", func(r chi.Router) {
		r.Post("/", h.handleCreateLedger)
		r.Route("/{ledger}", func(r chi.Router) {
			r.Post("/accounts", h.handleFindOrCreateAccount)
			r.Get("/accounts", h.handleListAccounts)
			r.Post("/documents/sync", h.handleSync)
			r.Post("/documents/void", h.handleVoid)
			r.Route("/accounts/{account}", func(r chi.Router) {
				r.Get("/parties", h.handlePartyBalances)
				r.Get("/parties/{kind}/{partyID}", h.handlePartyBalance)
				r.Get("/documents/{type}/{reference}", h.handleDocumentBalance)
				r.Get("/documents/{type}/{reference}/transactions", h.handleDocumentTransactions)
				r.Get("/aging", h.handleAging)
			})
		})
	})
}
