package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/catalog"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/tenant"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Inventory{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), catalog.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		TenantID: tenantID,
		SKU:      "SKU-" + uuid.NewString()[:8],
		Name:     "Americano",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedInventory(t *testing.T, db *gorm.DB, tenantID, productID, branchID uuid.UUID, onHand, reserved int, reorderPoint *int) *models.Inventory {
	t.Helper()
	row := &models.Inventory{
		TenantID:         tenantID,
		ProductID:        productID,
		BranchID:         branchID,
		QuantityOnHand:   onHand,
		QuantityReserved: reserved,
		ReorderPoint:     reorderPoint,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func intPtr(v int) *int { return &v }

func TestCreateOrUpdate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)

	created, err := svc.CreateOrUpdate(ctx, CreateOrUpdateInput{
		ProductID:      product.ID,
		BranchID:       branchID,
		QuantityOnHand: intPtr(50),
		ReorderPoint:   intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, created.QuantityOnHand)
	assert.Equal(t, 0, created.QuantityReserved)
	require.NotNil(t, created.ReorderPoint)
	assert.Equal(t, 10, *created.ReorderPoint)

	// Second call patches only the supplied fields.
	updated, err := svc.CreateOrUpdate(ctx, CreateOrUpdateInput{
		ProductID:    product.ID,
		BranchID:     branchID,
		ReorderPoint: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 50, updated.QuantityOnHand)
	assert.Equal(t, 5, *updated.ReorderPoint)
}

func TestCreateOrUpdate_ProductNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := tenant.WithTenantID(context.Background(), uuid.New())

	_, err := svc.CreateOrUpdate(ctx, CreateOrUpdateInput{
		ProductID: uuid.New(),
		BranchID:  uuid.New(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateOrUpdate_TenantIsolation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	owner := uuid.New()
	product := seedProduct(t, db, owner)

	otherCtx := tenant.WithTenantID(context.Background(), uuid.New())
	_, err := svc.CreateOrUpdate(otherCtx, CreateOrUpdateInput{
		ProductID: product.ID,
		BranchID:  uuid.New(),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 20, 5, nil)

	added, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentAdd,
		Quantity:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, added.QuantityOnHand)
	assert.Equal(t, 25, added.QuantityAvailable())

	subtracted, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentSubtract,
		Quantity:  25,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, subtracted.QuantityOnHand)
	assert.Equal(t, 0, subtracted.QuantityAvailable())

	set, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentSet,
		Quantity:  100,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, set.QuantityOnHand)
	assert.Equal(t, 5, set.QuantityReserved)

	// SET may drop on-hand below reserved; there is no lower-bound check.
	belowReserved, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentSet,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, belowReserved.QuantityOnHand)
	assert.Equal(t, 5, belowReserved.QuantityReserved)
}

func TestAdjust_SubtractInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 10, 4, nil)

	_, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentSubtract,
		Quantity:  11,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())

	// The rejected write must not touch the counters.
	row, err := svc.GetByProductAndBranch(ctx, product.ID, branchID)
	require.NoError(t, err)
	assert.Equal(t, 10, row.QuantityOnHand)
	assert.Equal(t, 4, row.QuantityReserved)
}

func TestReserveAndRelease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 10, 0, nil)

	reserved, err := svc.Reserve(ctx, product.ID, branchID, 6)
	require.NoError(t, err)
	assert.Equal(t, 10, reserved.QuantityOnHand)
	assert.Equal(t, 6, reserved.QuantityReserved)
	assert.Equal(t, 4, reserved.QuantityAvailable())

	_, err = svc.Reserve(ctx, product.ID, branchID, 5)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())

	released, err := svc.Release(ctx, product.ID, branchID, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, released.QuantityReserved)
	assert.Equal(t, 6, released.QuantityAvailable())
}

func TestRelease_ExceedsReserved(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 10, 3, nil)

	_, err := svc.Release(ctx, product.ID, branchID, 4)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePrecondition, typed.Code())
}

func TestCommitReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 10, 4, nil)

	row, err := svc.CommitReservation(ctx, product.ID, branchID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, row.QuantityOnHand)
	assert.Equal(t, 0, row.QuantityReserved)

	_, err = svc.CommitReservation(ctx, product.ID, branchID, 1)
	require.Error(t, err)
}

func TestLowStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchA := uuid.New()
	branchB := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)

	atThreshold := seedProduct(t, db, tenantID)
	belowThreshold := seedProduct(t, db, tenantID)
	healthy := seedProduct(t, db, tenantID)
	noThreshold := seedProduct(t, db, tenantID)

	// available == reorderPoint counts as low stock.
	seedInventory(t, db, tenantID, atThreshold.ID, branchA, 12, 2, intPtr(10))
	seedInventory(t, db, tenantID, belowThreshold.ID, branchB, 3, 0, intPtr(10))
	seedInventory(t, db, tenantID, healthy.ID, branchA, 100, 0, intPtr(10))
	seedInventory(t, db, tenantID, noThreshold.ID, branchA, 0, 0, nil)

	all, err := svc.LowStock(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	perBranch, err := svc.LowStock(ctx, &branchA)
	require.NoError(t, err)
	require.Len(t, perBranch, 1)
	assert.Equal(t, atThreshold.ID, perBranch[0].ProductID)
}

func TestCounterWritesBumpVersion(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	tenantID := uuid.New()
	branchID := uuid.New()
	ctx := tenant.WithTenantID(context.Background(), tenantID)
	product := seedProduct(t, db, tenantID)
	seedInventory(t, db, tenantID, product.ID, branchID, 10, 0, nil)

	_, err := svc.Adjust(ctx, AdjustInput{
		ProductID: product.ID,
		BranchID:  branchID,
		Type:      enums.StockAdjustmentAdd,
		Quantity:  5,
	})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, product.ID, branchID, 3)
	require.NoError(t, err)

	row, err := svc.GetByProductAndBranch(ctx, product.ID, branchID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Version)
}

func TestCompareAndSwapCounters_StaleVersionRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	tenantID := uuid.New()
	ctx := context.Background()
	product := seedProduct(t, db, tenantID)
	row := seedInventory(t, db, tenantID, product.ID, uuid.New(), 10, 0, nil)

	stale := *row
	landed, err := repo.CompareAndSwapCounters(ctx, row, 8, 0)
	require.NoError(t, err)
	require.True(t, landed)

	// The first write consumed the version; the stale copy must lose.
	landed, err = repo.CompareAndSwapCounters(ctx, &stale, 4, 0)
	require.NoError(t, err)
	assert.False(t, landed)

	reloaded, err := repo.FindByID(ctx, tenantID, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.QuantityOnHand)
}
