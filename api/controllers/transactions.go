package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rjnat/cursorpos-backend/api/middleware"
	"github.com/rjnat/cursorpos-backend/api/responses"
	"github.com/rjnat/cursorpos-backend/api/validators"
	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
)

// TransactionCreate records a priced transaction without touching stock.
func TransactionCreate(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
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

		record, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, newTransactionResponse(record), "transaction created")
	}
}

func TransactionGetByID(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, newTransactionResponse(record), "")
	}
}

func TransactionGetByNumber(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := strings.TrimSpace(chi.URLParam(r, "number"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "transaction number is required"))
			return
		}

		record, err := svc.GetByNumber(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionResponse(record), "")
	}
}

// TransactionList serves the paged listing with optional branchId, customerId
// and status query filters.
func TransactionList(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionPage(result), "")
	}
}

func TransactionListByBranch(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := parseUUIDParam(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), transactions.ListFilter{BranchID: &branchID}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionPage(result), "")
	}
}

func TransactionListByCustomer(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseUUIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), transactions.ListFilter{CustomerID: &customerID}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionPage(result), "")
	}
}

func TransactionListByStatus(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := enums.ParseTransactionStatus(chi.URLParam(r, "status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), transactions.ListFilter{Status: &status}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionPage(result), "")
	}
}

// TransactionListByDateRange serves transactions between startDate and
// endDate inclusive. Both bounds are required.
func TransactionListByDateRange(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if start == nil || end == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "startDate and endDate are required"))
			return
		}
		if end.Before(*start) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not precede startDate"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), transactions.ListFilter{StartDate: start, EndDate: end}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionPage(result), "")
	}
}

// TransactionCancel flips a transaction to CANCELLED. Financial columns stay
// frozen; cancelling twice is a state conflict.
func TransactionCancel(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTransactionResponse(record), "transaction cancelled")
	}
}

type createTransactionRequest struct {
	BranchID       uuid.UUID                   `json:"branch_id" validate:"required"`
	CustomerID     *uuid.UUID                  `json:"customer_id"`
	Type           string                      `json:"type"`
	DiscountAmount decimal.Decimal             `json:"discount_amount"`
	Notes          *string                     `json:"notes"`
	Items          []transactionItemPayload    `json:"items" validate:"required,min=1,dive"`
	Payments       []transactionPaymentPayload `json:"payments" validate:"dive"`
}

type transactionItemPayload struct {
	ProductID      uuid.UUID        `json:"product_id" validate:"required"`
	Quantity       int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice      decimal.Decimal  `json:"unit_price" validate:"required"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
}

type transactionPaymentPayload struct {
	Method    string          `json:"method" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference *string         `json:"reference"`
}

func (p createTransactionRequest) toInput(r *http.Request) (transactions.CreateInput, error) {
	txnType := enums.TransactionTypeSale
	if p.Type != "" {
		parsed, err := enums.ParseTransactionType(p.Type)
		if err != nil {
			return transactions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
		txnType = parsed
	}

	items := make([]transactions.ItemInput, len(p.Items))
	for i, item := range p.Items {
		items[i] = transactions.ItemInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        item.TaxRate,
		}
	}

	payments := make([]transactions.PaymentInput, len(p.Payments))
	for i, payment := range p.Payments {
		method, err := enums.ParsePaymentMethod(payment.Method)
		if err != nil {
			return transactions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		payments[i] = transactions.PaymentInput{
			Method:    method,
			Amount:    payment.Amount,
			Reference: payment.Reference,
		}
	}

	cashierID := middleware.UserIDFromContext(r.Context())
	if cashierID == uuid.Nil {
		return transactions.CreateInput{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "cashier identity missing")
	}

	return transactions.CreateInput{
		BranchID:       p.BranchID,
		CustomerID:     p.CustomerID,
		Type:           txnType,
		DiscountAmount: p.DiscountAmount,
		Notes:          p.Notes,
		Items:          items,
		Payments:       payments,
		CashierID:      cashierID,
		CashierName:    middleware.CashierNameFromContext(r.Context()),
	}, nil
}

type transactionResponse struct {
	ID                uuid.UUID                    `json:"id"`
	TransactionNumber string                       `json:"transaction_number"`
	BranchID          uuid.UUID                    `json:"branch_id"`
	CustomerID        *uuid.UUID                   `json:"customer_id,omitempty"`
	CashierID         uuid.UUID                    `json:"cashier_id"`
	CashierName       string                       `json:"cashier_name"`
	Type              string                       `json:"type"`
	Status            string                       `json:"status"`
	TransactionDate   time.Time                    `json:"transaction_date"`
	Subtotal          decimal.Decimal              `json:"subtotal"`
	DiscountAmount    decimal.Decimal              `json:"discount_amount"`
	TaxAmount         decimal.Decimal              `json:"tax_amount"`
	TotalAmount       decimal.Decimal              `json:"total_amount"`
	PaidAmount        decimal.Decimal              `json:"paid_amount"`
	ChangeAmount      decimal.Decimal              `json:"change_amount"`
	Notes             *string                      `json:"notes,omitempty"`
	CancelledAt       *time.Time                   `json:"cancelled_at,omitempty"`
	Items             []transactionItemResponse    `json:"items"`
	Payments          []transactionPaymentResponse `json:"payments"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
}

type transactionItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

type transactionPaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

func newTransactionResponse(record *models.Transaction) transactionResponse {
	items := make([]transactionItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, transactionItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        item.TaxRate,
			TaxAmount:      item.TaxAmount,
			LineTotal:      item.LineTotal,
		})
	}

	payments := make([]transactionPaymentResponse, 0, len(record.Payments))
	for _, payment := range record.Payments {
		payments = append(payments, transactionPaymentResponse{
			ID:        payment.ID,
			Method:    string(payment.Method),
			Amount:    payment.Amount,
			Reference: payment.Reference,
			PaidAt:    payment.PaidAt,
		})
	}

	return transactionResponse{
		ID:                record.ID,
		TransactionNumber: record.TransactionNumber,
		BranchID:          record.BranchID,
		CustomerID:        record.CustomerID,
		CashierID:         record.CashierID,
		CashierName:       record.CashierName,
		Type:              string(record.Type),
		Status:            string(record.Status),
		TransactionDate:   record.TransactionDate,
		Subtotal:          record.Subtotal,
		DiscountAmount:    record.DiscountAmount,
		TaxAmount:         record.TaxAmount,
		TotalAmount:       record.TotalAmount,
		PaidAmount:        record.PaidAmount,
		ChangeAmount:      record.ChangeAmount,
		Notes:             record.Notes,
		CancelledAt:       record.CancelledAt,
		Items:             items,
		Payments:          payments,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func newTransactionPage(result pagination.Result[models.Transaction]) pagination.Result[transactionResponse] {
	items := make([]transactionResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, newTransactionResponse(&result.Items[i]))
	}
	return pagination.Result[transactionResponse]{
		Items:      items,
		Page:       result.Page,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
}

func listFilterFromQuery(r *http.Request) (transactions.ListFilter, error) {
	var filter transactions.ListFilter

	if raw := r.URL.Query().Get("branchId"); raw != "" {
		branchID, err := validators.ParseQueryUUID(r, "branchId")
		if err != nil {
			return transactions.ListFilter{}, err
		}
		filter.BranchID = &branchID
	}
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		customerID, err := validators.ParseQueryUUID(r, "customerId")
		if err != nil {
			return transactions.ListFilter{}, err
		}
		filter.CustomerID = &customerID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseTransactionStatus(raw)
		if err != nil {
			return transactions.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filter.Status = &status
	}

	return filter, nil
}
