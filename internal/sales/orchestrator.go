// Package sales composes the transaction engine with the inventory ledger.
// The engine prices and records; the ledger moves stock; only this package
// ties the two together, inside a single storage transaction per call.
package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rjnat/cursorpos-backend/internal/inventory"
	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/db/models"
	"github.com/rjnat/cursorpos-backend/pkg/enums"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Orchestrator drives the sale and cancellation flows.
type Orchestrator struct {
	tx           txRunner
	transactions *transactions.Service
	inventory    *inventory.Service
}

// NewOrchestrator builds the sales orchestrator.
func NewOrchestrator(tx txRunner, txnSvc *transactions.Service, invSvc *inventory.Service) (*Orchestrator, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if txnSvc == nil {
		return nil, fmt.Errorf("transactions service required")
	}
	if invSvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &Orchestrator{tx: tx, transactions: txnSvc, inventory: invSvc}, nil
}

// CompleteSale reserves stock for every cart line, records the transaction,
// and converts the reservations into decrements when the sale completes
// outright. PENDING sales keep their reservations until cancelled or settled
// elsewhere. Everything commits or rolls back together.
func (o *Orchestrator) CompleteSale(ctx context.Context, input transactions.CreateInput) (*models.Transaction, error) {
	var txn *models.Transaction
	err := o.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invSvc := o.inventory.WithTx(tx)
		txnSvc := o.transactions.WithTx(tx)

		for _, item := range input.Items {
			if _, err := invSvc.Reserve(ctx, item.ProductID, input.BranchID, item.Quantity); err != nil {
				return err
			}
		}

		created, err := txnSvc.Create(ctx, input)
		if err != nil {
			return err
		}

		if created.Status == enums.TransactionStatusCompleted {
			for _, item := range created.Items {
				if _, err := invSvc.CommitReservation(ctx, item.ProductID, created.BranchID, item.Quantity); err != nil {
					return err
				}
			}
		}

		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CancelSale cancels the transaction and unwinds its stock effects: a
// PENDING sale releases its reservations, a COMPLETED sale adds the sold
// quantities back.
func (o *Orchestrator) CancelSale(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	var txn *models.Transaction
	err := o.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invSvc := o.inventory.WithTx(tx)
		txnSvc := o.transactions.WithTx(tx)

		current, err := txnSvc.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		priorStatus := current.Status

		cancelled, err := txnSvc.Cancel(ctx, transactionID)
		if err != nil {
			return err
		}

		switch priorStatus {
		case enums.TransactionStatusPending:
			for _, item := range current.Items {
				if _, err := invSvc.Release(ctx, item.ProductID, current.BranchID, item.Quantity); err != nil {
					return err
				}
			}
		case enums.TransactionStatusCompleted:
			for _, item := range current.Items {
				_, err := invSvc.Adjust(ctx, inventory.AdjustInput{
					ProductID: item.ProductID,
					BranchID:  current.BranchID,
					Type:      enums.StockAdjustmentAdd,
					Quantity:  item.Quantity,
				})
				if err != nil {
					return err
				}
			}
		}

		txn = cancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}
