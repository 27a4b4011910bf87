package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory tracks on-hand and reserved counters for a product at a branch.
// Version backs optimistic concurrency: every counter write increments it and
// the UPDATE predicates on the version read at load time.
type Inventory struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TenantID         uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_inventory_tenant_product_branch"`
	ProductID        uuid.UUID      `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_tenant_product_branch"`
	BranchID         uuid.UUID      `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:idx_inventory_tenant_product_branch"`
	QuantityOnHand   int            `gorm:"column:quantity_on_hand;not null;default:0"`
	QuantityReserved int            `gorm:"column:quantity_reserved;not null;default:0"`
	ReorderPoint     *int           `gorm:"column:reorder_point"`
	ReorderQuantity  *int           `gorm:"column:reorder_quantity"`
	Version          int64          `gorm:"column:version;not null;default:0"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName pins the singular-free name used by the migrations.
func (Inventory) TableName() string {
	return "inventory"
}

// BeforeCreate assigns an ID when the caller has not.
func (i *Inventory) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// QuantityAvailable is on-hand stock minus reservations.
func (i Inventory) QuantityAvailable() int {
	return i.QuantityOnHand - i.QuantityReserved
}
