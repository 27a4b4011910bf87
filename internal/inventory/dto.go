package inventory

import (
	"github.com/google/uuid"

	"github.com/rjnat/cursorpos-backend/pkg/enums"
)

// CreateOrUpdateInput creates the (product, branch) row on first use and
// patches only the supplied fields afterwards.
type CreateOrUpdateInput struct {
	ProductID       uuid.UUID
	BranchID        uuid.UUID
	QuantityOnHand  *int
	ReorderPoint    *int
	ReorderQuantity *int
}

// AdjustInput applies a manual stock adjustment.
type AdjustInput struct {
	ProductID uuid.UUID
	BranchID  uuid.UUID
	Type      enums.StockAdjustmentType
	Quantity  int
	Reason    *string
}
