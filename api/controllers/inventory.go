package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rjnat/cursorpos-backend/api/responses"
	"github.com/rjnat/cursorpos-backend/api/validators"
	"github.com/rjnat/cursorpos-backend/internal/inventory"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
	pkgerrors "github.com/rjnat/cursorpos-backend/pkg/errors"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
	"github.com/rjnat/cursorpos-backend/pkg/pagination"
)

// InventoryCreateOrUpdate creates the (product, branch) row on first use and
// patches only the supplied fields afterwards.
func InventoryCreateOrUpdate(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CreateOrUpdate(r.Context(), inventory.CreateOrUpdateInput{
			ProductID:       payload.ProductID,
			BranchID:        payload.BranchID,
			QuantityOnHand:  payload.QuantityOnHand,
			ReorderPoint:    payload.ReorderPoint,
			ReorderQuantity: payload.ReorderQuantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "inventory saved")
	}
}

// InventoryAdjust applies a manual ADD, SUBTRACT or SET stock movement.
func InventoryAdjust(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adjustInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adjustmentType, err := enums.ParseStockAdjustmentType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment type"))
			return
		}

		record, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			ProductID: payload.ProductID,
			BranchID:  payload.BranchID,
			Type:      adjustmentType,
			Quantity:  payload.Quantity,
			Reason:    payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "stock adjusted")
	}
}

func InventoryReserve(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, branchID, quantity, err := reservationQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Reserve(r.Context(), productID, branchID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "stock reserved")
	}
}

func InventoryRelease(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, branchID, quantity, err := reservationQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Release(r.Context(), productID, branchID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "reservation released")
	}
}

func InventoryGetByID(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "")
	}
}

func InventoryGetByProductAndBranch(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := parseUUIDParam(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByProductAndBranch(r.Context(), productID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryResponse(record), "")
	}
}

func InventoryListByBranch(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := parseUUIDParam(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByBranch(r.Context(), branchID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryPage(result), "")
	}
}

func InventoryListByProduct(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryList(rows), "")
	}
}

// InventoryLowStock lists rows whose available quantity has reached the
// reorder point. Mounted both tenant-wide and per branch; the branch route
// supplies a branchId path parameter.
func InventoryLowStock(svc *inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var branchID *uuid.UUID
		if raw := chi.URLParam(r, "branchId"); raw != "" {
			parsed, err := parseUUIDParam(r, "branchId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			branchID = &parsed
		}

		rows, err := svc.LowStock(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInventoryList(rows), "")
	}
}

type upsertInventoryRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	BranchID        uuid.UUID `json:"branch_id" validate:"required"`
	QuantityOnHand  *int      `json:"quantity_on_hand" validate:"omitempty,min=0"`
	ReorderPoint    *int      `json:"reorder_point" validate:"omitempty,min=0"`
	ReorderQuantity *int      `json:"reorder_quantity" validate:"omitempty,min=0"`
}

type adjustInventoryRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	BranchID  uuid.UUID `json:"branch_id" validate:"required"`
	Type      string    `json:"type" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
	Reason    *string   `json:"reason"`
}

func reservationQuery(r *http.Request) (uuid.UUID, uuid.UUID, int, error) {
	productID, err := validators.ParseQueryUUID(r, "productId")
	if err != nil {
		return uuid.Nil, uuid.Nil, 0, err
	}
	branchID, err := validators.ParseQueryUUID(r, "branchId")
	if err != nil {
		return uuid.Nil, uuid.Nil, 0, err
	}
	quantity, err := validators.ParseQueryInt(r, "quantity", 0, 1, 1<<30)
	if err != nil {
		return uuid.Nil, uuid.Nil, 0, err
	}
	if quantity < 1 {
		return uuid.Nil, uuid.Nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").WithDetails(map[string]any{"field": "quantity"})
	}
	return productID, branchID, quantity, nil
}

type inventoryResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	BranchID          uuid.UUID `json:"branch_id"`
	QuantityOnHand    int       `json:"quantity_on_hand"`
	QuantityReserved  int       `json:"quantity_reserved"`
	QuantityAvailable int       `json:"quantity_available"`
	ReorderPoint      *int      `json:"reorder_point,omitempty"`
	ReorderQuantity   *int      `json:"reorder_quantity,omitempty"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newInventoryResponse(record *models.Inventory) inventoryResponse {
	return inventoryResponse{
		ID:                record.ID,
		ProductID:         record.ProductID,
		BranchID:          record.BranchID,
		QuantityOnHand:    record.QuantityOnHand,
		QuantityReserved:  record.QuantityReserved,
		QuantityAvailable: record.QuantityAvailable(),
		ReorderPoint:      record.ReorderPoint,
		ReorderQuantity:   record.ReorderQuantity,
		Version:           record.Version,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func newInventoryList(rows []models.Inventory) []inventoryResponse {
	out := make([]inventoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newInventoryResponse(&rows[i]))
	}
	return out
}

func newInventoryPage(result pagination.Result[models.Inventory]) pagination.Result[inventoryResponse] {
	return pagination.Result[inventoryResponse]{
		Items:      newInventoryList(result.Items),
		Page:       result.Page,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
}
