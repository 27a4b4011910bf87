package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rjnat/cursorpos-backend/pkg/enums"
)

// ItemInput is one cart line on a create request. Product name and code are
// snapshotted server-side; quantity and pricing come from the till.
type ItemInput struct {
	ProductID      uuid.UUID
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        *decimal.Decimal
}

// PaymentInput is one tender on a create request.
type PaymentInput struct {
	Method    enums.PaymentMethod
	Amount    decimal.Decimal
	Reference *string
}

// CreateInput carries everything needed to record a transaction. Cashier
// identity comes from the access token, not the request body.
type CreateInput struct {
	BranchID       uuid.UUID
	CustomerID     *uuid.UUID
	Type           enums.TransactionType
	DiscountAmount decimal.Decimal
	Notes          *string
	Items          []ItemInput
	Payments       []PaymentInput
	CashierID      uuid.UUID
	CashierName    string
}

// ListFilter narrows transaction listings. Nil fields match everything; the
// date range is inclusive on both ends.
type ListFilter struct {
	BranchID   *uuid.UUID
	CustomerID *uuid.UUID
	Status     *enums.TransactionStatus
	StartDate  *time.Time
	EndDate    *time.Time
}
