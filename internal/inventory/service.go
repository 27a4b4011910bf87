// Package inventory keeps the per-branch stock counters behind versioned
// writes. Counter math never happens in SQL expressions; each write reloads
// the row, recomputes, and lands through a compare-and-swap on the version
// column so concurrent writers cannot overwrite each other.
package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/catalog"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

// casMaxAttempts bounds the reload/retry loop on version conflicts.
const casMaxAttempts = 3

type catalogLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
}

// Service exposes the stock ledger operations.
type Service struct {
	repo    *Repository
	catalog catalogLookup
}

// NewService builds the inventory service.
func NewService(repo *Repository, catalog catalogLookup) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	return &Service{repo: repo, catalog: catalog}, nil
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

// CreateOrUpdate lazily creates the (product, branch) row and patches only
// the supplied fields on subsequent calls.
func (s *Service) CreateOrUpdate(ctx context.Context, input CreateOrUpdateInput) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalog.FindByID(ctx, tenantID, input.ProductID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByProductAndBranch(ctx, tenantID, input.ProductID, input.BranchID)
	if err != nil {
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
		row := &models.Inventory{
			TenantID:        tenantID,
			ProductID:       input.ProductID,
			BranchID:        input.BranchID,
			ReorderPoint:    input.ReorderPoint,
			ReorderQuantity: input.ReorderQuantity,
		}
		if input.QuantityOnHand != nil {
			row.QuantityOnHand = *input.QuantityOnHand
		}
		return s.repo.Create(ctx, row)
	}

	fields := map[string]any{}
	if input.QuantityOnHand != nil {
		// On-hand rewrites ride the versioned path so they cannot race
		// with reservations.
		updated, casErr := s.setOnHand(ctx, tenantID, input.ProductID, input.BranchID, *input.QuantityOnHand)
		if casErr != nil {
			return nil, casErr
		}
		existing = updated
	}
	if input.ReorderPoint != nil {
		fields["reorder_point"] = *input.ReorderPoint
	}
	if input.ReorderQuantity != nil {
		fields["reorder_quantity"] = *input.ReorderQuantity
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, tenantID, existing.ID)
}

// Adjust applies a manual ADD, SUBTRACT, or SET to the on-hand counter.
// SUBTRACT below available stock is rejected; SET has no lower-bound check
// beyond keeping reservations covered.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adjustment type %q", input.Type))
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	return s.mutateCounters(ctx, tenantID, input.ProductID, input.BranchID, func(row *models.Inventory) (int, int, error) {
		switch input.Type {
		case enums.StockAdjustmentAdd:
			return row.QuantityOnHand + input.Quantity, row.QuantityReserved, nil
		case enums.StockAdjustmentSubtract:
			if input.Quantity > row.QuantityOnHand {
				return 0, 0, insufficientStock(row, input.Quantity)
			}
			return row.QuantityOnHand - input.Quantity, row.QuantityReserved, nil
		case enums.StockAdjustmentSet:
			// SET carries no lower-bound check; keeping on-hand above
			// reserved is the caller's responsibility.
			return input.Quantity, row.QuantityReserved, nil
		default:
			return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adjustment type %q", input.Type))
		}
	})
}

// Reserve holds quantity against future sale completion.
func (s *Service) Reserve(ctx context.Context, productID, branchID uuid.UUID, quantity int) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	return s.mutateCounters(ctx, tenantID, productID, branchID, func(row *models.Inventory) (int, int, error) {
		if quantity > row.QuantityAvailable() {
			return 0, 0, pkgerrors.New(pkgerrors.CodePrecondition, "insufficient available stock").
				WithDetails(map[string]any{"available": row.QuantityAvailable(), "requested": quantity})
		}
		return row.QuantityOnHand, row.QuantityReserved + quantity, nil
	})
}

// Release returns previously reserved quantity to the available pool.
func (s *Service) Release(ctx context.Context, productID, branchID uuid.UUID, quantity int) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	return s.mutateCounters(ctx, tenantID, productID, branchID, func(row *models.Inventory) (int, int, error) {
		if quantity > row.QuantityReserved {
			return 0, 0, pkgerrors.New(pkgerrors.CodePrecondition, "release exceeds reserved quantity").
				WithDetails(map[string]any{"reserved": row.QuantityReserved, "requested": quantity})
		}
		return row.QuantityOnHand, row.QuantityReserved - quantity, nil
	})
}

// CommitReservation converts a reservation into a stock decrement in one
// versioned write. Used when a sale completes.
func (s *Service) CommitReservation(ctx context.Context, productID, branchID uuid.UUID, quantity int) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	return s.mutateCounters(ctx, tenantID, productID, branchID, func(row *models.Inventory) (int, int, error) {
		if quantity > row.QuantityReserved {
			return 0, 0, pkgerrors.New(pkgerrors.CodePrecondition, "commit exceeds reserved quantity").
				WithDetails(map[string]any{"reserved": row.QuantityReserved, "requested": quantity})
		}
		return row.QuantityOnHand - quantity, row.QuantityReserved - quantity, nil
	})
}

// GetByID loads one row.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

// GetByProductAndBranch loads the unique (product, branch) row.
func (s *Service) GetByProductAndBranch(ctx context.Context, productID, branchID uuid.UUID) (*models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByProductAndBranch(ctx, tenantID, productID, branchID)
}

// ListByBranch pages the branch's inventory.
func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID, params pagination.Params) (pagination.Result[models.Inventory], error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return pagination.Result[models.Inventory]{}, err
	}
	rows, total, err := s.repo.ListByBranch(ctx, tenantID, branchID, params)
	if err != nil {
		return pagination.Result[models.Inventory]{}, err
	}
	return pagination.NewResult(rows, params, total), nil
}

// ListByProduct returns every branch row for the product.
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, tenantID, productID)
}

// LowStock lists rows at or below their reorder point, optionally per branch.
func (s *Service) LowStock(ctx context.Context, branchID *uuid.UUID) ([]models.Inventory, error) {
	tenantID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLowStock(ctx, tenantID, branchID)
}

func (s *Service) setOnHand(ctx context.Context, tenantID, productID, branchID uuid.UUID, target int) (*models.Inventory, error) {
	return s.mutateCounters(ctx, tenantID, productID, branchID, func(row *models.Inventory) (int, int, error) {
		return target, row.QuantityReserved, nil
	})
}

// mutateCounters runs the reload/compute/compare-and-swap loop. compute
// returns the new (onHand, reserved) pair or a precondition error; rejected
// preconditions leave the row untouched.
func (s *Service) mutateCounters(ctx context.Context, tenantID, productID, branchID uuid.UUID, compute func(*models.Inventory) (int, int, error)) (*models.Inventory, error) {
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		row, err := s.repo.FindByProductAndBranch(ctx, tenantID, productID, branchID)
		if err != nil {
			return nil, err
		}

		onHand, reserved, err := compute(row)
		if err != nil {
			return nil, err
		}

		landed, err := s.repo.CompareAndSwapCounters(ctx, row, onHand, reserved)
		if err != nil {
			return nil, err
		}
		if landed {
			row.QuantityOnHand = onHand
			row.QuantityReserved = reserved
			row.Version++
			return row, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "inventory row contended, retry the operation")
}

func insufficientStock(row *models.Inventory, requested int) error {
	return pkgerrors.New(pkgerrors.CodePrecondition, "insufficient stock").
		WithDetails(map[string]any{"onHand": row.QuantityOnHand, "requested": requested})
}
