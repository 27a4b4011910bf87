package receipts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:receipts_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Transaction{},
		&models.TransactionItem{},
		&models.Payment{},
		&models.Receipt{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), transactions.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedTransaction(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		TenantID:          tenantID,
		TransactionNumber: "TRX-20260828-120000-ABCD1234",
		BranchID:          uuid.New(),
		CashierID:         uuid.New(),
		CashierName:       "Jane Smith",
		Type:              enums.TransactionTypeSale,
		Status:            enums.TransactionStatusCompleted,
		TransactionDate:   time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Subtotal:          decimal.RequireFromString("200.00"),
		TaxAmount:         decimal.RequireFromString("19.00"),
		DiscountAmount:    decimal.RequireFromString("5.00"),
		TotalAmount:       decimal.RequireFromString("204.00"),
		PaidAmount:        decimal.RequireFromString("204.00"),
		ChangeAmount:      decimal.Zero,
		Items: []models.TransactionItem{
			{
				ProductID:   uuid.New(),
				ProductName: "Americano",
				SKU:         "SKU-AM-01",
				UnitPrice:   decimal.RequireFromString("100.00"),
				Quantity:    2,
				LineTotal:   decimal.RequireFromString("209.00"),
			},
		},
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	txn := seedTransaction(t, db, tenantID)

	receipt, err := svc.Generate(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.ReceiptNumber, "RCP-"), "number = %s", receipt.ReceiptNumber)
	assert.Equal(t, "SALE", receipt.ReceiptType)
	assert.Equal(t, 0, receipt.PrintCount)
	assert.Nil(t, receipt.LastPrintedAt)

	assert.Contains(t, receipt.Content, "SALES RECEIPT")
	assert.Contains(t, receipt.Content, txn.TransactionNumber)
	assert.Contains(t, receipt.Content, "Cashier: Jane Smith")
	assert.Contains(t, receipt.Content, "Americano")
	assert.Contains(t, receipt.Content, "TOTAL:        204")
}

func TestGenerate_DuplicateIsStateConflict(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	txn := seedTransaction(t, db, tenantID)

	first, err := svc.Generate(ctx, txn.ID)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, txn.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// The first receipt is untouched and still shows zero prints.
	reloaded, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.PrintCount)
}

func TestGenerate_TransactionNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := tenant.WithTenantID(context.Background(), uuid.New())

	_, err := svc.Generate(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetByTransaction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	txn := seedTransaction(t, db, tenantID)

	created, err := svc.Generate(ctx, txn.ID)
	require.NoError(t, err)

	found, err := svc.GetByTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	otherCtx := tenant.WithTenantID(context.Background(), uuid.New())
	_, err = svc.GetByTransaction(otherCtx, txn.ID)
	require.Error(t, err)
}

func TestPrint(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	txn := seedTransaction(t, db, tenantID)

	receipt, err := svc.Generate(ctx, txn.ID)
	require.NoError(t, err)

	printed, err := svc.Print(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, printed.PrintCount)
	require.NotNil(t, printed.LastPrintedAt)
	firstPrint := *printed.LastPrintedAt

	again, err := svc.Print(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.PrintCount)
	require.NotNil(t, again.LastPrintedAt)
	assert.False(t, again.LastPrintedAt.Before(firstPrint))

	_, err = svc.Print(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
