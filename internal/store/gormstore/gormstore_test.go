package gormstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"skmart/backend/internal/store"
	"skmart/backend/internal/store/storetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository { return setupTestStore(t) })
}

func TestSQLiteFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "pos.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := s.AddCategory(ctx, "Baby Diapers"); err != nil {
		t.Fatalf("add category failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	categories, err := reopened.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Baby Diapers" {
		t.Fatalf("unexpected categories after reopen: %+v", categories)
	}
}

func TestMySQLConformance(t *testing.T) {
	dsn := os.Getenv("SKMART_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("set SKMART_TEST_MYSQL_DSN to run mysql integration test")
	}

	s, err := OpenMySQL(dsn)
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	storetest.Run(t, func(t *testing.T) store.Repository {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
			for _, model := range []any{&saleItemRow{}, &saleRow{}, &categoryRow{}, &productRow{}} {
				if err := global.Delete(model).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("reset tables: %v", err)
		}
		return s
	})
}
