package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPosSchemaMigrationContainsTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_pos_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no pos schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE products",
		"CREATE TABLE inventory",
		"CREATE TABLE transactions",
		"CREATE TABLE transaction_items",
		"CREATE TABLE payments",
		"CREATE TABLE receipts",
		"idx_transactions_tenant_number",
		"idx_inventory_tenant_product_branch",
		"idx_receipts_transaction",
		"chk_inventory_reserved_non_negative",
		"DROP TABLE receipts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
