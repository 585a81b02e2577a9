package storage

import (
	"context"
	"testing"
)

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration at index %d has version %d, want %d", i, m.Version, i+1)
		}
		if m.Description == "" {
			t.Errorf("migration %d has no description", m.Version)
		}
	}
	if last := migrations[len(migrations)-1].Version; last != ExpectedSchemaVersion {
		t.Errorf("last migration version = %d, want ExpectedSchemaVersion %d", last, ExpectedSchemaVersion)
	}
}

// TestMigration3_UniqueRuleDate checks the ledger uniqueness index exists.
func TestMigration3_UniqueRuleDate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var indexCount int
	err := store.db.QueryRowContext(context.Background(), `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_expense_entries_rule_date'
	`).Scan(&indexCount)
	if err != nil {
		t.Fatalf("Failed to check index: %v", err)
	}
	if indexCount != 1 {
		t.Error("Unique rule/date index was not created")
	}

	// A raw duplicate must be rejected by the index itself.
	insert := `INSERT INTO expense_entries (date, title, amount, recurring_id) VALUES ('2025-10-01', 'x', '1', 7)`
	if _, err := store.db.Exec(insert); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := store.db.Exec(insert); err == nil {
		t.Error("duplicate (recurring_id, date) insert succeeded, want constraint error")
	}

	// Manual rows without a rule are not constrained.
	manual := `INSERT INTO expense_entries (date, title, amount) VALUES ('2025-10-01', 'x', '1')`
	for i := 0; i < 2; i++ {
		if _, err := store.db.Exec(manual); err != nil {
			t.Fatalf("manual insert %d failed: %v", i, err)
		}
	}
}
