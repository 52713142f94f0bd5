package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigboard/gigboard-backend/pkg/migrate"
)

// The unique Stripe identifiers are what makes retried vault and confirm
// calls collapse to a single row, so their indexes must exist in the schema.
func TestPaymentMigrationsCarryUniqueAnchors(t *testing.T) {
	cases := []struct {
		pattern string
		checks  []string
	}{
		{
			pattern: "*_create_payment_methods.sql",
			checks: []string{
				"CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_methods_stripe_id",
				"ON payment_methods (stripe_payment_method_id)",
				"WHERE is_default",
			},
		},
		{
			pattern: "*_create_transactions.sql",
			checks: []string{
				"CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_stripe_intent_id",
				"ON transactions (stripe_payment_intent_id)",
			},
		},
		{
			pattern: "*_create_invoices.sql",
			checks: []string{
				"CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_invoice_number",
			},
		},
	}

	for _, tc := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", tc.pattern))
		if err != nil {
			t.Fatalf("glob %s: %v", tc.pattern, err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration matching %s", tc.pattern)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)

		for _, sub := range tc.checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected migrations to exist")
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
