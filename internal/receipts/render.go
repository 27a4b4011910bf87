package receipts

import (
	"fmt"
	"strings"

	"github.com/rjnat/cursorpos-backend/pkg/db/models"
)

const receiptBorder = "========================================\n"

// renderContent builds the plain-text receipt body from the priced
// transaction. All figures come from the frozen transaction columns.
func renderContent(txn *models.Transaction) string {
	var b strings.Builder
	b.WriteString(receiptBorder)
	b.WriteString("           SALES RECEIPT\n")
	b.WriteString(receiptBorder)
	fmt.Fprintf(&b, "Transaction: %s\n", txn.TransactionNumber)
	fmt.Fprintf(&b, "Date: %s\n", txn.TransactionDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Cashier: %s\n", txn.CashierName)
	b.WriteString(receiptBorder)
	b.WriteString("\n")

	b.WriteString("ITEMS:\n")
	for _, item := range txn.Items {
		fmt.Fprintf(&b, "%-20s x%d\n", item.ProductName, item.Quantity)
		fmt.Fprintf(&b, "  @ %s = %s\n", item.UnitPrice, item.LineTotal)
	}

	b.WriteString("\n")
	b.WriteString(receiptBorder)
	fmt.Fprintf(&b, "Subtotal:     %s\n", txn.Subtotal)
	fmt.Fprintf(&b, "Tax:          %s\n", txn.TaxAmount)
	fmt.Fprintf(&b, "Discount:     %s\n", txn.DiscountAmount)
	fmt.Fprintf(&b, "TOTAL:        %s\n", txn.TotalAmount)
	fmt.Fprintf(&b, "Paid:         %s\n", txn.PaidAmount)
	fmt.Fprintf(&b, "Change:       %s\n", txn.ChangeAmount)
	b.WriteString(receiptBorder)
	b.WriteString("\n    Thank you for your purchase!\n")
	b.WriteString(receiptBorder)

	return b.String()
}
