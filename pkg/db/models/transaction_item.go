package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionItem is a priced line inside a transaction. Product name, SKU,
// unit price and tax rate are snapshotted so later catalog edits cannot
// rewrite history.
type TransactionItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID  uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	SKU            string          `gorm:"column:sku;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(19,4);not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(19,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"column:tax_rate;type:numeric(7,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(19,4);not null;default:0"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:numeric(19,4);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an ID when the caller has not.
func (i *TransactionItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
