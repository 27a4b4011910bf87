package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/catalog"
	"github.com/rjnat/cursorpos-backend/internal/inventory"
	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

// gormTxRunner adapts a raw test DB to the runner the orchestrator expects.
type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db           *gorm.DB
	orchestrator *Orchestrator
	inventory    *inventory.Service
	tenantID     uuid.UUID
	branchID     uuid.UUID
	ctx          context.Context
	product      *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Inventory{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalogRepo := catalog.NewRepository(db)
	invSvc, err := inventory.NewService(inventory.NewRepository(db), catalogRepo)
	require.NoError(t, err)
	txnSvc, err := transactions.NewService(transactions.NewRepository(db), catalogRepo)
	require.NoError(t, err)
	orchestrator, err := NewOrchestrator(gormTxRunner{db: db}, txnSvc, invSvc)
	require.NoError(t, err)

	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)

	product := &models.Product{
		TenantID: tenantID,
		SKU:      "SKU-" + uuid.NewString()[:8],
		Name:     "Americano",
		Price:    decimal.RequireFromString("100.00"),
	}
	require.NoError(t, db.Create(product).Error)
	require.NoError(t, db.Create(&models.Inventory{
		TenantID:       tenantID,
		ProductID:      product.ID,
		BranchID:       branchID,
		QuantityOnHand: 10,
	}).Error)

	return &fixture{
		db:           db,
		orchestrator: orchestrator,
		inventory:    invSvc,
		tenantID:     tenantID,
		branchID:     branchID,
		ctx:          ctx,
		product:      product,
	}
}

func (f *fixture) saleInput(qty int, tendered string) transactions.CreateInput {
	return transactions.CreateInput{
		BranchID:    f.branchID,
		CashierID:   uuid.New(),
		CashierName: "Jane Smith",
		Items: []transactions.ItemInput{
			{ProductID: f.product.ID, Quantity: qty, UnitPrice: decimal.RequireFromString("100.00")},
		},
		Payments: []transactions.PaymentInput{
			{Method: enums.PaymentMethodCash, Amount: decimal.RequireFromString(tendered)},
		},
	}
}

func (f *fixture) stock(t *testing.T) *models.Inventory {
	t.Helper()
	row, err := f.inventory.GetByProductAndBranch(f.ctx, f.product.ID, f.branchID)
	require.NoError(t, err)
	return row
}

func TestCompleteSale_PaidInFullDecrementsStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	txn, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(3, "300.00"))
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, txn.Status)

	row := f.stock(t)
	assert.Equal(t, 7, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)
	assert.Equal(t, 7, row.QuantityAvailable())
}

func TestCompleteSale_PendingKeepsReservation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	txn, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(3, "100.00"))
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusPending, txn.Status)

	row := f.stock(t)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 3, row.QuantityReserved)
	assert.Equal(t, 7, row.QuantityAvailable())
}

func TestCompleteSale_InsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(11, "1100.00"))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())

	// No transaction row and no counter movement survive the rollback.
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	row := f.stock(t)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)
}

func TestCancelSale_PendingReleasesReservation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	txn, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(4, "100.00"))
	require.NoError(t, err)
	require.Equal(t, enums.TransactionStatusPending, txn.Status)

	cancelled, err := f.orchestrator.CancelSale(f.ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCancelled, cancelled.Status)

	row := f.stock(t)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)
}

func TestCancelSale_CompletedRestocks(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	txn, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(4, "400.00"))
	require.NoError(t, err)
	require.Equal(t, enums.TransactionStatusCompleted, txn.Status)
	require.Equal(t, 6, f.stock(t).QuantityOnHand)

	cancelled, err := f.orchestrator.CancelSale(f.ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCancelled, cancelled.Status)

	row := f.stock(t)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)
}

func TestCancelSale_TwiceFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	txn, err := f.orchestrator.CompleteSale(f.ctx, f.saleInput(2, "200.00"))
	require.NoError(t, err)

	_, err = f.orchestrator.CancelSale(f.ctx, txn.ID)
	require.NoError(t, err)

	_, err = f.orchestrator.CancelSale(f.ctx, txn.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// The failed second cancel must not touch the counters.
	row := f.stock(t)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)
}
