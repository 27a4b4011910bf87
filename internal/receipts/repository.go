package receipts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
)

// Repository wires receipt persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new receipt.
func (r *Repository) Create(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return nil, err
	}
	return receipt, nil
}

// FindByID loads a receipt belonging to the tenant.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		First(&receipt, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByTransaction loads the receipt issued for a transaction, if any.
func (r *Repository) FindByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		First(&receipt, "tenant_id = ? AND transaction_id = ?", tenantID, transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return nil, err
	}
	return &receipt, nil
}

// RecordPrint bumps the print counter and stamps the print time.
func (r *Repository) RecordPrint(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"print_count":     gorm.Expr("print_count + 1"),
			"last_printed_at": at,
		}).Error
}
