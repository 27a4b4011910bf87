package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjnat/cursorpos-backend/internal/catalog"
	"github.com/rjnat/cursorpos-backend/internal/inventory"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
)

func (e *testEnv) inventoryService(t *testing.T) *inventory.Service {
	t.Helper()
	svc, err := inventory.NewService(inventory.NewRepository(e.db), catalog.NewRepository(e.db))
	require.NoError(t, err)
	return svc
}

func (e *testEnv) seedInventory(t *testing.T, productID, branchID uuid.UUID, onHand int, reorderPoint *int) *models.Inventory {
	t.Helper()
	row := &models.Inventory{
		TenantID:       e.tenantID,
		ProductID:      productID,
		BranchID:       branchID,
		QuantityOnHand: onHand,
		ReorderPoint:   reorderPoint,
	}
	require.NoError(t, e.db.Create(row).Error)
	return row
}

func TestInventoryCreateOrUpdate_CreatesRow(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Paper Cups", "5.00")
	handler := InventoryCreateOrUpdate(env.inventoryService(t), nil)

	body := `{
		"product_id": "` + product.ID.String() + `",
		"branch_id": "` + uuid.NewString() + `",
		"quantity_on_hand": 25,
		"reorder_point": 5
	}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, "/api/v1/inventory", body))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope successEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	var data inventoryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 25, data.QuantityOnHand)
	assert.Equal(t, 25, data.QuantityAvailable)
	require.NotNil(t, data.ReorderPoint)
	assert.Equal(t, 5, *data.ReorderPoint)
}

func TestInventoryReserve_QueryParams(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Paper Cups", "5.00")
	branchID := uuid.New()
	env.seedInventory(t, product.ID, branchID, 10, nil)
	handler := InventoryReserve(env.inventoryService(t), nil)

	target := "/api/v1/inventory/reserve?productId=" + product.ID.String() +
		"&branchId=" + branchID.String() + "&quantity=4"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, target, ""))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope successEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	var data inventoryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 4, data.QuantityReserved)
	assert.Equal(t, 6, data.QuantityAvailable)
}

func TestInventoryReserve_MissingQuantity(t *testing.T) {
	env := newTestEnv(t)
	handler := InventoryReserve(env.inventoryService(t), nil)

	target := "/api/v1/inventory/reserve?productId=" + uuid.NewString() + "&branchId=" + uuid.NewString()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, target, ""))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestInventoryReserve_InsufficientAvailable(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Paper Cups", "5.00")
	branchID := uuid.New()
	env.seedInventory(t, product.ID, branchID, 3, nil)
	handler := InventoryReserve(env.inventoryService(t), nil)

	target := "/api/v1/inventory/reserve?productId=" + product.ID.String() +
		"&branchId=" + branchID.String() + "&quantity=4"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, target, ""))

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "PRECONDITION_FAILED", envelope.Error.Code)
}

func TestInventoryAdjust_SetRewritesOnHand(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Paper Cups", "5.00")
	branchID := uuid.New()
	env.seedInventory(t, product.ID, branchID, 10, nil)
	handler := InventoryAdjust(env.inventoryService(t), nil)

	body := `{
		"product_id": "` + product.ID.String() + `",
		"branch_id": "` + branchID.String() + `",
		"type": "SET",
		"quantity": 2
	}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, "/api/v1/inventory/adjust", body))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope successEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	var data inventoryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 2, data.QuantityOnHand)
}

func TestInventoryAdjust_UnknownType(t *testing.T) {
	env := newTestEnv(t)
	handler := InventoryAdjust(env.inventoryService(t), nil)

	body := `{
		"product_id": "` + uuid.NewString() + `",
		"branch_id": "` + uuid.NewString() + `",
		"type": "MULTIPLY",
		"quantity": 2
	}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, env.request(http.MethodPost, "/api/v1/inventory/adjust", body))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestInventoryLowStock_BranchRoute(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Paper Cups", "5.00")
	other := env.seedProduct(t, "Lids", "2.00")
	branchID := uuid.New()
	otherBranch := uuid.New()
	point := 5
	env.seedInventory(t, product.ID, branchID, 4, &point)
	env.seedInventory(t, other.ID, otherBranch, 1, &point)

	router := chi.NewRouter()
	svc := env.inventoryService(t)
	router.Get("/api/v1/inventory/low-stock", InventoryLowStock(svc, nil))
	router.Get("/api/v1/inventory/low-stock/branch/{branchId}", InventoryLowStock(svc, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, env.request(http.MethodGet, "/api/v1/inventory/low-stock/branch/"+branchID.String(), ""))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope successEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	var rows []inventoryResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, product.ID, rows[0].ProductID)

	all := httptest.NewRecorder()
	router.ServeHTTP(all, env.request(http.MethodGet, "/api/v1/inventory/low-stock", ""))
	require.Equal(t, http.StatusOK, all.Code)
	require.NoError(t, json.Unmarshal(all.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, &rows))
	assert.Len(t, rows, 2)
}
