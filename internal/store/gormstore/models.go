package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
)

type productRow struct {
	ID                int64           `gorm:"primaryKey;autoIncrement:false"`
	Code              string          `gorm:"size:64;index"`
	Name              string          `gorm:"size:255;not null"`
	Category          string          `gorm:"size:255"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(38,12)"`
	RetailPrice       decimal.Decimal `gorm:"type:decimal(38,12)"`
	DiscountType      string          `gorm:"size:16"`
	DiscountRate      decimal.Decimal `gorm:"type:decimal(38,12)"`
	DiscountValue     decimal.Decimal `gorm:"type:decimal(38,12)"`
	Stock             int
	LowStockThreshold int
	Image             string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (productRow) TableName() string { return "products" }

type categoryRow struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:255;not null"`
}

func (categoryRow) TableName() string { return "categories" }

type saleRow struct {
	ID                int64           `gorm:"primaryKey;autoIncrement:false"`
	SoldAt            time.Time       `gorm:"index;not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(38,12)"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(38,12)"`
	TotalProfit       decimal.Decimal `gorm:"type:decimal(38,12)"`
	BillDiscountType  string          `gorm:"size:16"`
	BillDiscountRate  decimal.Decimal `gorm:"type:decimal(38,12)"`
	BillDiscountValue decimal.Decimal `gorm:"type:decimal(38,12)"`
	PaymentCash       decimal.Decimal `gorm:"type:decimal(38,12)"`
	PaymentBalance    decimal.Decimal `gorm:"type:decimal(38,12)"`
	PaymentMethod     string          `gorm:"size:16"`
	PaymentStatus     string          `gorm:"size:16"`
	CustomerName      string          `gorm:"size:255"`
	CustomerPhone     string          `gorm:"size:64"`
}

func (saleRow) TableName() string { return "sales" }

type saleItemRow struct {
	SaleID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Position      int   `gorm:"primaryKey;autoIncrement:false"`
	ProductID     int64
	Code          string `gorm:"size:64"`
	Name          string `gorm:"size:255"`
	Qty           int
	Price         decimal.Decimal `gorm:"type:decimal(38,12)"`
	Cost          decimal.Decimal `gorm:"type:decimal(38,12)"`
	DiscountType  string          `gorm:"size:16"`
	DiscountRate  decimal.Decimal `gorm:"type:decimal(38,12)"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(38,12)"`
}

func (saleItemRow) TableName() string { return "sale_items" }

func productFromDomain(p domain.Product) productRow {
	return productRow{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Category:          p.Category,
		CostPrice:         p.CostPrice,
		RetailPrice:       p.RetailPrice,
		DiscountType:      string(p.DiscountType),
		DiscountRate:      p.DiscountRate,
		DiscountValue:     p.DiscountValue,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		Image:             p.Image,
	}
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:                r.ID,
		Code:              r.Code,
		Name:              r.Name,
		Category:          r.Category,
		CostPrice:         r.CostPrice,
		RetailPrice:       r.RetailPrice,
		DiscountType:      domain.DiscountKind(r.DiscountType),
		DiscountRate:      r.DiscountRate,
		DiscountValue:     r.DiscountValue,
		Stock:             r.Stock,
		LowStockThreshold: r.LowStockThreshold,
		Image:             r.Image,
	}
}

func saleFromDomain(s domain.Sale) (saleRow, []saleItemRow) {
	row := saleRow{
		ID:                s.ID,
		SoldAt:            s.Timestamp.UTC(),
		Subtotal:          s.Subtotal,
		TotalAmount:       s.TotalAmount,
		TotalProfit:       s.TotalProfit,
		BillDiscountType:  string(s.BillDiscountType.Normalize()),
		BillDiscountRate:  s.BillDiscountRate,
		BillDiscountValue: s.BillDiscountValue,
		PaymentCash:       s.Payment.Cash,
		PaymentBalance:    s.Payment.Balance,
		PaymentMethod:     s.PaymentMethod,
		PaymentStatus:     s.PaymentStatus,
		CustomerName:      s.CustomerName,
		CustomerPhone:     s.CustomerPhone,
	}
	items := make([]saleItemRow, 0, len(s.Items))
	for pos, item := range s.Items {
		items = append(items, saleItemRow{
			SaleID:        s.ID,
			Position:      pos,
			ProductID:     item.ProductID,
			Code:          item.Code,
			Name:          item.Name,
			Qty:           item.Qty,
			Price:         item.Price,
			Cost:          item.Cost,
			DiscountType:  string(item.DiscountType.Normalize()),
			DiscountRate:  item.DiscountRate,
			DiscountValue: item.DiscountValue,
		})
	}
	return row, items
}

func (r saleRow) toDomain(items []saleItemRow) domain.Sale {
	sale := domain.Sale{
		ID:                r.ID,
		Timestamp:         r.SoldAt.UTC(),
		Items:             make([]domain.SaleItem, 0, len(items)),
		Subtotal:          r.Subtotal,
		TotalAmount:       r.TotalAmount,
		TotalProfit:       r.TotalProfit,
		BillDiscountType:  domain.DiscountKind(r.BillDiscountType),
		BillDiscountRate:  r.BillDiscountRate,
		BillDiscountValue: r.BillDiscountValue,
		Payment:           domain.Payment{Cash: r.PaymentCash, Balance: r.PaymentBalance},
		PaymentMethod:     r.PaymentMethod,
		PaymentStatus:     r.PaymentStatus,
		CustomerName:      r.CustomerName,
		CustomerPhone:     r.CustomerPhone,
	}
	for _, item := range items {
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductID:     item.ProductID,
			Code:          item.Code,
			Name:          item.Name,
			Qty:           item.Qty,
			Price:         item.Price,
			Cost:          item.Cost,
			DiscountType:  domain.DiscountKind(item.DiscountType),
			DiscountRate:  item.DiscountRate,
			DiscountValue: item.DiscountValue,
		})
	}
	return sale
}
