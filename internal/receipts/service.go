// Package receipts issues the at-most-one text receipt per transaction and
// tracks how many times it was printed.
package receipts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

const receiptTypeSale = "SALE"

type transactionLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
}

// Service exposes receipt issuance operations.
type Service struct {
	repo         *Repository
	transactions transactionLookup
	now          func() time.Time
}

// NewService builds the receipt service.
func NewService(repo *Repository, transactions transactionLookup) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transaction lookup required")
	}
	return &Service{repo: repo, transactions: transactions, now: time.Now}, nil
}

// WithTx returns a service whose writes run inside the provided transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	rebound := *s
	rebound.repo = s.repo.WithTx(tx)
	if txRepo, ok := s.transactions.(*transactions.Repository); ok {
		rebound.transactions = txRepo.WithTx(tx)
	}
	return &rebound
}

// Generate renders and stores the receipt for a transaction. A transaction
// gets exactly one receipt; the duplicate check runs before the insert.
func (s *Service) Generate(ctx context.Context, transactionID uuid.UUID) (*models.Receipt, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.transactions.FindByID(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByTransaction(ctx, tenantID, transactionID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "receipt already exists for this transaction")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	now := s.now()
	receipt := &models.Receipt{
		TenantID:      tenantID,
		TransactionID: transactionID,
		ReceiptNumber: newReceiptNumber(now),
		ReceiptType:   receiptTypeSale,
		Content:       renderContent(txn),
		IssuedAt:      now,
	}
	return s.repo.Create(ctx, receipt)
}

// GetByID loads one receipt.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

// GetByTransaction loads the receipt issued for a transaction.
func (s *Service) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*models.Receipt, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByTransaction(ctx, tenantID, transactionID)
}

// Print increments the print counter and stamps the print time. There is no
// upper bound on the counter.
func (s *Service) Print(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	if err := s.repo.RecordPrint(ctx, tenantID, id, s.now()); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

func newReceiptNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102-150405"), suffix)
}
