package store

import (
	"context"
	"errors"

	"skmart/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("duplicate product code")
	ErrInvalid       = errors.New("invalid record")
)

// LegacySaleIDFloor marks where timestamp-based sale ids from older data
// start. They are kept but never used to pick the next id.
const LegacySaleIDFloor int64 = 1_000_000_000_000

// Repository is the persistence boundary shared by every backend. Workflows
// never learn which one is active.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// UpsertProduct inserts when ID is zero and replaces the stored record
	// otherwise.
	UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ReplaceProducts(ctx context.Context, products []domain.Product) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	AddCategory(ctx context.Context, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// ListSales returns the ledger in ascending id order.
	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, id int64, sale domain.Sale) (*domain.Sale, error)
	ClearSales(ctx context.Context) error
	ReplaceSales(ctx context.Context, sales []domain.Sale) error
}

// NextSaleID is one past the highest non-legacy id.
func NextSaleID(ids []int64) int64 {
	var maxID int64
	for _, id := range ids {
		if id < LegacySaleIDFloor && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// CodeTaken reports whether another product already uses code.
func CodeTaken(products []domain.Product, code string, selfID int64) bool {
	if code == "" {
		return false
	}
	for _, p := range products {
		if p.ID != selfID && p.Code == code {
			return true
		}
	}
	return false
}

// NormalizeProduct fills the defaults every backend stores.
func NormalizeProduct(p domain.Product) domain.Product {
	p.DiscountType = p.DiscountType.Normalize()
	if p.LowStockThreshold <= 0 {
		p.LowStockThreshold = domain.DefaultLowStockThreshold
	}
	return p
}

func CloneSale(s domain.Sale) domain.Sale {
	out := s
	out.Items = make([]domain.SaleItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
