package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rjnat/cursorpos-backend/api/responses"
	"github.com/rjnat/cursorpos-backend/internal/receipts"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
)

// ReceiptGenerate renders and stores the receipt for a transaction. A second
// call for the same transaction is a state conflict.
func ReceiptGenerate(svc *receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := parseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Generate(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, newReceiptResponse(record), "receipt generated")
	}
}

func ReceiptGetByID(svc *receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReceiptResponse(record), "")
	}
}

func ReceiptGetByTransaction(svc *receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := parseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReceiptResponse(record), "")
	}
}

// ReceiptPrint bumps the print counter and stamps the print time.
func ReceiptPrint(svc *receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Print(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReceiptResponse(record), "receipt printed")
	}
}

type receiptResponse struct {
	ID            uuid.UUID  `json:"id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	ReceiptNumber string     `json:"receipt_number"`
	ReceiptType   string     `json:"receipt_type"`
	Content       string     `json:"content"`
	IssuedAt      time.Time  `json:"issued_at"`
	PrintCount    int        `json:"print_count"`
	LastPrintedAt *time.Time `json:"last_printed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newReceiptResponse(record *models.Receipt) receiptResponse {
	return receiptResponse{
		ID:            record.ID,
		TransactionID: record.TransactionID,
		ReceiptNumber: record.ReceiptNumber,
		ReceiptType:   record.ReceiptType,
		Content:       record.Content,
		IssuedAt:      record.IssuedAt,
		PrintCount:    record.PrintCount,
		LastPrintedAt: record.LastPrintedAt,
		CreatedAt:     record.CreatedAt,
	}
}
