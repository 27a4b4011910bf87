package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt is the rendered proof of sale for a completed transaction.
// At most one receipt may exist per transaction.
type Receipt struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TenantID      uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_receipts_tenant_number"`
	TransactionID uuid.UUID      `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex:idx_receipts_transaction"`
	ReceiptNumber string         `gorm:"column:receipt_number;not null;uniqueIndex:idx_receipts_tenant_number"`
	ReceiptType   string         `gorm:"column:receipt_type;not null;default:'SALE'"`
	Content       string         `gorm:"column:content;type:text;not null"`
	IssuedAt      time.Time      `gorm:"column:issued_at;not null"`
	PrintCount    int            `gorm:"column:print_count;not null;default:0"`
	LastPrintedAt *time.Time     `gorm:"column:last_printed_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// BeforeCreate assigns an ID when the caller has not.
func (r *Receipt) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
