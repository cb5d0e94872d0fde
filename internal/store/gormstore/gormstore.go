// Package gormstore is the relational backend for MySQL and SQLite, built on
// GORM with AutoMigrate for the schema.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

func OpenMySQL(dsn string) (*Store, error) {
	return open(mysql.Open(dsn), 16)
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-process database.
func OpenSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	return open(sqlite.Open(path), 1)
}

func open(dialector gorm.Dialector, maxOpen int) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	if err := db.AutoMigrate(&productRow{}, &categoryRow{}, &saleRow{}, &saleItemRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toDomain())
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row, err := findProduct(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	p := row.toDomain()
	return &p, nil
}

func findProduct(db *gorm.DB, id int64) (productRow, error) {
	var row productRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, store.ErrNotFound
		}
		return row, fmt.Errorf("find product: %w", err)
	}
	return row, nil
}

func (s *Store) UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, store.ErrInvalid
	}
	product = store.NormalizeProduct(product)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if product.Code != "" {
			var clashes int64
			if err := tx.Model(&productRow{}).Where("code = ? AND id <> ?", product.Code, product.ID).Count(&clashes).Error; err != nil {
				return err
			}
			if clashes > 0 {
				return store.ErrDuplicateCode
			}
		}
		if product.ID == 0 {
			next, err := nextID(tx, &productRow{})
			if err != nil {
				return err
			}
			product.ID = next
		}
		row := productFromDomain(product)
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	saved := product
	return &saved, nil
}

func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	var updated productRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&productRow{}).Where("id = ?", id).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error; err != nil {
			return err
		}
		row, err := findProduct(tx, id)
		updated = row
		return err
	})
	if err != nil {
		return nil, err
	}
	p := updated.toDomain()
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&productRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&productRow{}).Error; err != nil {
			return err
		}
		var next int64 = 1
		for _, p := range products {
			next = max(next, p.ID+1)
		}
		rows := make([]productRow, 0, len(products))
		for _, p := range products {
			p = store.NormalizeProduct(p)
			if p.ID == 0 {
				p.ID = next
				next++
			}
			rows = append(rows, productFromDomain(p))
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, domain.Category{ID: r.ID, Name: r.Name})
	}
	return categories, nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	var row categoryRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &categoryRow{})
		if err != nil {
			return err
		}
		row = categoryRow{ID: id, Name: name}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	return &domain.Category{ID: row.ID, Name: row.Name}, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&categoryRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	db := s.db.WithContext(ctx)

	var rows []saleRow
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var itemRows []saleItemRow
	if err := db.Order("sale_id").Order("position").Find(&itemRows).Error; err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}

	bySale := make(map[int64][]saleItemRow, len(rows))
	for _, item := range itemRows {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	sales := make([]domain.Sale, 0, len(rows))
	for _, r := range rows {
		sales = append(sales, r.toDomain(bySale[r.ID]))
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	db := s.db.WithContext(ctx)

	var row saleRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	var items []saleItemRow
	if err := db.Where("sale_id = ?", id).Order("position").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	sale := row.toDomain(items)
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&saleRow{}).Where("id < ?", store.LegacySaleIDFloor).
			Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		sale.ID = maxID + 1
		return insertSale(tx, sale)
	})
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	created := store.CloneSale(sale)
	return &created, nil
}

func (s *Store) UpdateSale(ctx context.Context, id int64, sale domain.Sale) (*domain.Sale, error) {
	sale.ID = id
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&saleRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		if err := tx.Delete(&saleItemRow{}, "sale_id = ?", id).Error; err != nil {
			return err
		}
		return insertSale(tx, sale)
	})
	if err != nil {
		return nil, err
	}
	updated := store.CloneSale(sale)
	return &updated, nil
}

func (s *Store) ClearSales(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(clearSales)
}

func (s *Store) ReplaceSales(ctx context.Context, sales []domain.Sale) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearSales(tx); err != nil {
			return err
		}
		for _, sale := range sales {
			if sale.ID == 0 {
				return fmt.Errorf("%w: sale without id", store.ErrInvalid)
			}
			if err := insertSale(tx, sale); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearSales(tx *gorm.DB) error {
	global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := global.Delete(&saleItemRow{}).Error; err != nil {
		return err
	}
	return global.Delete(&saleRow{}).Error
}

func insertSale(tx *gorm.DB, sale domain.Sale) error {
	row, items := saleFromDomain(sale)
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func nextID(tx *gorm.DB, model any) (int64, error) {
	var maxID int64
	if err := tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, err
	}
	return maxID + 1, nil
}
