package httpx

import (
	"errors"
	"net/http"

	"github.com/tidewater-fin/tidewater/internal/ledger/shared"
	"github.com/tidewater-fin/tidewater/internal/money"
)

// RespondError maps ledger domain errors to HTTP responses using RFC7807.
// Invariant violations and bad input map to 4xx; anything unknown is a 500
// with the detail withheld.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrLedgerNotFound),
		errors.Is(err, shared.ErrDocumentNotFound),
		errors.Is(err, shared.ErrAccountNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrLedgerExists),
		errors.Is(err, shared.ErrAccountConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrNoEntries),
		errors.Is(err, shared.ErrInvalidDocument),
		errors.Is(err, shared.ErrInvalidSide),
		errors.Is(err, shared.ErrInvalidBreakdown),
		errors.Is(err, money.ErrInvalidCurrency):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrRateUnavailable):
		Problem(w, http.StatusBadGateway, "Rate Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
