package postgres

import (
	"context"
	"os"
	"testing"

	"skmart/backend/internal/store"
	"skmart/backend/internal/store/storetest"
)

func TestPostgresConformance(t *testing.T) {
	databaseURL := os.Getenv("SKMART_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set SKMART_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	storetest.Run(t, func(t *testing.T) store.Repository {
		if _, err := s.db.ExecContext(ctx, `TRUNCATE sale_items, sales, categories, products`); err != nil {
			t.Fatalf("reset tables: %v", err)
		}
		return s
	})
}

func TestMigrateURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"postgres://u:p@localhost:5432/pos?sslmode=disable", "pgx5://u:p@localhost:5432/pos?sslmode=disable"},
		{"postgresql://u:p@localhost:5432/pos?sslmode=disable", "pgx5://u:p@localhost:5432/pos?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tc := range cases {
		if got := migrateURL(tc.in); got != tc.want {
			t.Fatalf("migrateURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
