package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/pkg/enums"
)

// Transaction is the immutable financial record of a sale. Monetary columns
// are frozen at creation time; only Status may change afterwards.
type Transaction struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	TenantID          uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_transactions_tenant_number"`
	TransactionNumber string                  `gorm:"column:transaction_number;not null;uniqueIndex:idx_transactions_tenant_number"`
	BranchID          uuid.UUID               `gorm:"column:branch_id;type:uuid;not null"`
	CustomerID        *uuid.UUID              `gorm:"column:customer_id;type:uuid"`
	CashierID         uuid.UUID               `gorm:"column:cashier_id;type:uuid;not null"`
	CashierName       string                  `gorm:"column:cashier_name;not null"`
	Type              enums.TransactionType   `gorm:"column:type;type:text;not null;default:'SALE'"`
	Status            enums.TransactionStatus `gorm:"column:status;type:text;not null"`
	TransactionDate   time.Time               `gorm:"column:transaction_date;not null"`
	Subtotal          decimal.Decimal         `gorm:"column:subtotal;type:numeric(19,4);not null"`
	DiscountAmount    decimal.Decimal         `gorm:"column:discount_amount;type:numeric(19,4);not null;default:0"`
	TaxAmount         decimal.Decimal         `gorm:"column:tax_amount;type:numeric(19,4);not null;default:0"`
	TotalAmount       decimal.Decimal         `gorm:"column:total_amount;type:numeric(19,4);not null"`
	PaidAmount        decimal.Decimal         `gorm:"column:paid_amount;type:numeric(19,4);not null;default:0"`
	ChangeAmount      decimal.Decimal         `gorm:"column:change_amount;type:numeric(19,4);not null;default:0"`
	Notes             *string                 `gorm:"column:notes"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	Items             []TransactionItem       `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Payments          []Payment               `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt         gorm.DeletedAt          `gorm:"column:deleted_at;index"`
}

// BeforeCreate assigns an ID when the caller has not.
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
