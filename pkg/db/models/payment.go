package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/pkg/enums"
)

// Payment records one tender applied to a transaction.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID uuid.UUID           `gorm:"column:transaction_id;type:uuid;not null;index"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(19,4);not null"`
	Reference     *string             `gorm:"column:reference"`
	PaidAt        time.Time           `gorm:"column:paid_at;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an ID when the caller has not.
func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
