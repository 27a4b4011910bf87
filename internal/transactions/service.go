// Package transactions is the pricing engine. A transaction is priced once,
// at creation, and the monetary columns never change afterwards; cancel only
// flips the status. Stock movement is somebody else's job.
package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/catalog"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

var oneHundred = decimal.NewFromInt(100)

type catalogLookup interface {
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes the transaction engine operations.
type Service struct {
	repo    *Repository
	catalog catalogLookup
	now     func() time.Time
}

// NewService builds the transaction service.
func NewService(repo *Repository, catalog catalogLookup) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &Service{repo: repo, catalog: catalog, now: time.Now}, nil
}

// WithTx returns a service whose writes run inside the provided transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	rebound := *s
	rebound.repo = s.repo.WithTx(tx)
	if cat, ok := s.catalog.(*catalog.Repository); ok {
		rebound.catalog = cat.WithTx(tx)
	}
	return &rebound
}

// Create validates the cart, derives every monetary figure, and persists the
// transaction graph atomically. It never touches inventory.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Transaction, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.catalog.FindByIDs(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	txnType := input.Type
	if txnType == "" {
		txnType = enums.TransactionTypeSale
	}

	subtotal := decimal.Zero
	itemDiscounts := decimal.Zero
	taxTotal := decimal.Zero
	items := make([]models.TransactionItem, 0, len(input.Items))

	for _, item := range input.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": item.ProductID})
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		lineSubtotal := item.UnitPrice.Mul(qty)
		if item.DiscountAmount.GreaterThan(lineSubtotal) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item discount exceeds line subtotal").
				WithDetails(map[string]any{"productId": item.ProductID})
		}

		taxRate := product.TaxRate
		if item.TaxRate != nil {
			taxRate = *item.TaxRate
		}
		lineTax := lineSubtotal.Sub(item.DiscountAmount).Mul(taxRate).Div(oneHundred)
		lineTotal := lineSubtotal.Sub(item.DiscountAmount).Add(lineTax)

		subtotal = subtotal.Add(lineSubtotal)
		itemDiscounts = itemDiscounts.Add(item.DiscountAmount)
		taxTotal = taxTotal.Add(lineTax)

		items = append(items, models.TransactionItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			SKU:            product.SKU,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        taxRate,
			TaxAmount:      lineTax,
			LineTotal:      lineTotal,
		})
	}

	total := subtotal.Sub(itemDiscounts).Sub(input.DiscountAmount).Add(taxTotal)

	paid := decimal.Zero
	payments := make([]models.Payment, 0, len(input.Payments))
	for _, payment := range input.Payments {
		paid = paid.Add(payment.Amount)
		payments = append(payments, models.Payment{
			Method:    payment.Method,
			Amount:    payment.Amount,
			Reference: payment.Reference,
			PaidAt:    now,
		})
	}

	change := paid.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	status := enums.TransactionStatusPending
	if paid.GreaterThanOrEqual(total) {
		status = enums.TransactionStatusCompleted
	}

	txn := &models.Transaction{
		TenantID:          tenantID,
		TransactionNumber: newTransactionNumber(now),
		BranchID:          input.BranchID,
		CustomerID:        input.CustomerID,
		CashierID:         input.CashierID,
		CashierName:       input.CashierName,
		Type:              txnType,
		Status:            status,
		TransactionDate:   now,
		Subtotal:          subtotal,
		DiscountAmount:    input.DiscountAmount,
		TaxAmount:         taxTotal,
		TotalAmount:       total,
		PaidAmount:        paid,
		ChangeAmount:      change,
		Notes:             input.Notes,
		Items:             items,
		Payments:          payments,
	}

	return s.repo.Create(ctx, txn)
}

// GetByID loads one transaction.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

// GetByNumber loads one transaction by its business number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*models.Transaction, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByNumber(ctx, tenantID, number)
}

// List pages the tenant's transactions newest first.
func (s *Service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[models.Transaction], error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return pagination.Result[models.Transaction]{}, err
	}
	rows, total, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return pagination.Result[models.Transaction]{}, err
	}
	return pagination.NewResult(rows, params, total), nil
}

// Cancel marks the transaction CANCELLED. The move is one-way; cancelling a
// cancelled transaction is a state conflict. Monetary figures stay frozen.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if txn.Status == enums.TransactionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already cancelled")
	}

	now := s.now()
	if err := s.repo.MarkCancelled(ctx, tenantID, id, now); err != nil {
		return nil, err
	}
	txn.Status = enums.TransactionStatusCancelled
	txn.CancelledAt = &now
	return txn, nil
}

func validateCreateInput(input CreateInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if len(input.Payments) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one payment is required")
	}
	if input.Type != "" && !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.DiscountAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item unit price must not be negative")
		}
		if item.DiscountAmount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item discount must not be negative")
		}
		if item.TaxRate != nil && item.TaxRate.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item tax rate must not be negative")
		}
	}
	for _, payment := range input.Payments {
		if !payment.Method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", payment.Method))
		}
		if !payment.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
		}
	}
	return nil
}

func newTransactionNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("TRX-%s-%s", now.Format("20060102-150405"), suffix)
}
