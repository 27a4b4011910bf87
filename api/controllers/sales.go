package controllers

import (
	"net/http"

	"github.com/rjnat/cursorpos-backend/api/responses"
	"github.com/rjnat/cursorpos-backend/api/validators"
	"github.com/rjnat/cursorpos-backend/internal/sales"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
)

// SaleComplete runs the full checkout: reserve stock for every line, record
// the transaction, and commit the reservations when payment covers the total.
// Any failure rolls the whole thing back.
func SaleComplete(orch *sales.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := orch.CompleteSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, newTransactionResponse(record), "sale completed")
	}
}

// SaleCancel cancels the transaction and puts its stock effects back.
func SaleCancel(orch *sales.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := parseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := orch.CancelSale(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionResponse(record), "sale cancelled")
	}
}
