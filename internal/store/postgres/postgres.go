package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

// New connects, applies pending migrations and returns the store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if err := Migrate(databaseURL); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, code, name, category, cost_price, retail_price, discount_type,
	discount_rate, discount_value, stock, low_stock_threshold, image`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var p domain.Product
	var discountType string
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.CostPrice, &p.RetailPrice, &discountType,
		&p.DiscountRate, &p.DiscountValue, &p.Stock, &p.LowStockThreshold, &p.Image)
	p.DiscountType = domain.DiscountKind(discountType)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, store.ErrInvalid
	}
	product = store.NormalizeProduct(product)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if product.ID == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM products`).Scan(&product.ID); err != nil {
			return nil, err
		}
	}
	if err := upsertProductTx(ctx, tx, product); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	saved := product
	return &saved, nil
}

func upsertProductTx(ctx context.Context, tx *sql.Tx, p domain.Product) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			cost_price = EXCLUDED.cost_price,
			retail_price = EXCLUDED.retail_price,
			discount_type = EXCLUDED.discount_type,
			discount_rate = EXCLUDED.discount_rate,
			discount_value = EXCLUDED.discount_value,
			stock = EXCLUDED.stock,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			image = EXCLUDED.image,
			updated_at = now()
	`, p.ID, p.Code, p.Name, p.Category, p.CostPrice, p.RetailPrice, string(p.DiscountType),
		p.DiscountRate, p.DiscountValue, p.Stock, p.LowStockThreshold, p.Image)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns, id, delta))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return err
	}
	var nextID int64 = 1
	for _, p := range products {
		nextID = max(nextID, p.ID+1)
	}
	for _, p := range products {
		p = store.NormalizeProduct(p)
		if p.ID == 0 {
			p.ID = nextID
			nextID++
		}
		if err := upsertProductTx(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name)
		SELECT COALESCE(MAX(id), 0) + 1, $1 FROM categories
		RETURNING id, name
	`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const saleColumns = `id, sold_at, subtotal, total_amount, total_profit, bill_discount_type,
	bill_discount_rate, bill_discount_value, payment_cash, payment_balance, payment_method,
	payment_status, customer_name, customer_phone`

func scanSale(row scanner) (domain.Sale, error) {
	var sale domain.Sale
	var billType string
	err := row.Scan(&sale.ID, &sale.Timestamp, &sale.Subtotal, &sale.TotalAmount, &sale.TotalProfit, &billType,
		&sale.BillDiscountRate, &sale.BillDiscountValue, &sale.Payment.Cash, &sale.Payment.Balance, &sale.PaymentMethod,
		&sale.PaymentStatus, &sale.CustomerName, &sale.CustomerPhone)
	sale.BillDiscountType = domain.DiscountKind(billType)
	sale.Timestamp = sale.Timestamp.UTC()
	sale.Items = []domain.SaleItem{}
	return sale, err
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	index := map[int64]int{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		index[sale.ID] = len(sales)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `SELECT sale_id, `+itemColumns+` FROM sale_items ORDER BY sale_id, position`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID int64
		item, err := scanItem(itemRows, &saleID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT sale_id, `+itemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var saleID int64
		item, err := scanItem(rows, &saleID)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM sales WHERE id < $1`, store.LegacySaleIDFloor).Scan(&sale.ID)
	if err != nil {
		return nil, err
	}
	if err := insertSaleTx(ctx, tx, sale); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := store.CloneSale(sale)
	return &created, nil
}

func (s *Store) UpdateSale(ctx context.Context, id int64, sale domain.Sale) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	sale.ID = id
	if err := insertSaleTx(ctx, tx, sale); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	updated := store.CloneSale(sale)
	return &updated, nil
}

func (s *Store) ClearSales(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE sale_items, sales`)
	return err
}

func (s *Store) ReplaceSales(ctx context.Context, sales []domain.Sale) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales`); err != nil {
		return err
	}
	for _, sale := range sales {
		if sale.ID == 0 {
			return fmt.Errorf("%w: sale without id", store.ErrInvalid)
		}
		if err := insertSaleTx(ctx, tx, sale); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const itemColumns = `product_id, code, name, qty, price, cost, discount_type, discount_rate, discount_value`

func scanItem(row scanner, saleID *int64) (domain.SaleItem, error) {
	var item domain.SaleItem
	var discountType string
	err := row.Scan(saleID, &item.ProductID, &item.Code, &item.Name, &item.Qty, &item.Price, &item.Cost,
		&discountType, &item.DiscountRate, &item.DiscountValue)
	item.DiscountType = domain.DiscountKind(discountType)
	return item, err
}

func insertSaleTx(ctx context.Context, tx *sql.Tx, sale domain.Sale) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, sale.ID, sale.Timestamp, sale.Subtotal, sale.TotalAmount, sale.TotalProfit, string(sale.BillDiscountType.Normalize()),
		sale.BillDiscountRate, sale.BillDiscountValue, sale.Payment.Cash, sale.Payment.Balance, sale.PaymentMethod,
		sale.PaymentStatus, sale.CustomerName, sale.CustomerPhone)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale %d already exists", store.ErrInvalid, sale.ID)
		}
		return err
	}

	for pos, item := range sale.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, `+itemColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, sale.ID, pos, item.ProductID, item.Code, item.Name, item.Qty, item.Price, item.Cost,
			string(item.DiscountType.Normalize()), item.DiscountRate, item.DiscountValue)
		if err != nil {
			return err
		}
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
