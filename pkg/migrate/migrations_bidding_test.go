package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bidboard/bidboard-backend/pkg/migrate"
)

func TestBiddingMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_bidding_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no bidding migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE bid_status AS ENUM",
		"CREATE TABLE customers",
		"CREATE TABLE bids",
		"CREATE TABLE doors",
		"CREATE TABLE line_items",
		"CONSTRAINT idx_doors_bid_number UNIQUE (bid_id, door_number)",
		"ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir should validate: %v", err)
	}
}
