package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
)

// Repository wires transaction persistence helpers.
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

// Create persists the transaction graph (items and payments ride along).
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// FindByID loads a transaction with its items and payments.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&txn, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return &txn, nil
}

// FindByNumber loads a transaction by its business number.
func (r *Repository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&txn, "tenant_id = ? AND transaction_number = ?", tenantID, number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return &txn, nil
}

// List pages transactions newest first, applying the optional filters.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Transaction, int64, error) {
	params = params.Normalize()
	base := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("tenant_id = ?", tenantID)

	if filter.BranchID != nil {
		base = base.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.CustomerID != nil {
		base = base.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.StartDate != nil {
		base = base.Where("transaction_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("transaction_date <= ?", *filter.EndDate)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	err := base.
		Preload("Items").
		Preload("Payments").
		Order("transaction_date DESC, id DESC").
		Limit(params.Size).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkCancelled flips the status to CANCELLED and stamps the moment.
func (r *Repository) MarkCancelled(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"status":       enums.TransactionStatusCancelled,
			"cancelled_at": at,
		}).Error
}
