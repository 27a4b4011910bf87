package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
)

// Repository wires inventory persistence helpers.
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

// Create persists a new inventory row.
func (r *Repository) Create(ctx context.Context, row *models.Inventory) (*models.Inventory, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID loads an inventory row belonging to the tenant.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		First(&row, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, err
	}
	return &row, nil
}

// FindByProductAndBranch loads the unique (tenant, product, branch) row.
func (r *Repository) FindByProductAndBranch(ctx context.Context, tenantID, productID, branchID uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		First(&row, "tenant_id = ? AND product_id = ? AND branch_id = ?", tenantID, productID, branchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, err
	}
	return &row, nil
}

// ListByBranch pages inventory rows for a branch.
func (r *Repository) ListByBranch(ctx context.Context, tenantID, branchID uuid.UUID, params pagination.Params) ([]models.Inventory, int64, error) {
	params = params.Normalize()
	base := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Inventory
	err := base.
		Order("created_at DESC, id DESC").
		Limit(params.Size).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByProduct returns all branch rows for a product.
func (r *Repository) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLowStock returns rows whose available quantity has reached the reorder
// point. Rows without a reorder point never qualify. branchID narrows the
// scan when non-nil.
func (r *Repository) ListLowStock(ctx context.Context, tenantID uuid.UUID, branchID *uuid.UUID) ([]models.Inventory, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("reorder_point IS NOT NULL").
		Where("quantity_on_hand - quantity_reserved <= reorder_point")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}

	var rows []models.Inventory
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFields patches non-counter columns on the row.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// CompareAndSwapCounters writes the new counters only when the row still
// carries the version the caller read. It reports whether the write landed.
func (r *Repository) CompareAndSwapCounters(ctx context.Context, row *models.Inventory, onHand, reserved int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ? AND version = ?", row.ID, row.Version).
		Updates(map[string]any{
			"quantity_on_hand":  onHand,
			"quantity_reserved": reserved,
			"version":           row.Version + 1,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
