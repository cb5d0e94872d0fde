// Package domain holds the plain data types shared by every layer.
//
// Importing domain sets decimal.MarshalJSONWithoutQuotes, so every
// decimal.Decimal in the process encodes as a bare JSON number. db.json,
// the Redis cart entries and the HTTP bodies all rely on that encoding.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	PaymentMethodCash   = "Cash"
	PaymentMethodCredit = "Credit"

	PaymentStatusPaid   = "Paid"
	PaymentStatusCredit = "Credit"

	DefaultLowStockThreshold = 3
	DefaultCustomerName      = "Anonymous"
	DefaultCategoryName      = "General"
)

// DefaultCategories is seeded into an empty category list on first load.
var DefaultCategories = []string{
	"Women's Wear",
	"Kids' Wear",
	"Baby Diapers",
	"Adult Diapers",
	"Decoration Items",
	"Gift Items",
	"Cosmetics & Perfumes",
	"Another Items",
}

type Product struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	RetailPrice       decimal.Decimal `json:"retailPrice"`
	DiscountType      DiscountKind    `json:"discountType"`
	DiscountRate      decimal.Decimal `json:"discountRate"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Image             string          `json:"image,omitempty"`
}

// Discount returns the product's default line discount.
func (p Product) Discount() Discount {
	return DiscountFromFields(p.DiscountType, p.DiscountRate, p.DiscountValue)
}

func (p Product) IsLowStock() bool {
	threshold := p.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return p.Stock <= threshold
}

type ProductView struct {
	Product
	LowStock bool `json:"lowStock"`
}

type ProductFilter struct {
	Term     string
	Category string
}

type ProductSaveRequest struct {
	ID                int64           `json:"id,omitempty"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	RetailPrice       decimal.Decimal `json:"retailPrice"`
	DiscountType      DiscountKind    `json:"discountType"`
	DiscountRate      decimal.Decimal `json:"discountRate"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Image             string          `json:"image,omitempty"`
}

type StockAdjustRequest struct {
	Change int `json:"change"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryCreateRequest struct {
	Name string `json:"name"`
}

type SaleItem struct {
	ProductID     int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Qty           int             `json:"qty"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	DiscountType  DiscountKind    `json:"discountType"`
	DiscountRate  decimal.Decimal `json:"discountRate"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

func (i SaleItem) Discount() Discount {
	return DiscountFromFields(i.DiscountType, i.DiscountRate, i.DiscountValue)
}

type Payment struct {
	Cash    decimal.Decimal `json:"cash"`
	Balance decimal.Decimal `json:"balance"`
}

type Sale struct {
	ID                int64           `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	Items             []SaleItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	BillDiscountType  DiscountKind    `json:"billDiscountType"`
	BillDiscountRate  decimal.Decimal `json:"billDiscountRate"`
	BillDiscountValue decimal.Decimal `json:"billDiscountValue"`
	Payment           Payment         `json:"payment"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentStatus     string          `json:"paymentStatus"`
	CustomerName      string          `json:"customerName"`
	CustomerPhone     string          `json:"customerPhone"`
}

func (s Sale) BillDiscount() Discount {
	return DiscountFromFields(s.BillDiscountType, s.BillDiscountRate, s.BillDiscountValue)
}

type SaleFilter struct {
	Date  string
	Query string
	Page  int
}

type SaleListResponse struct {
	Sales        []Sale          `json:"sales"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"totalPages"`
	TotalEntries int             `json:"totalEntries"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

type CheckoutLine struct {
	ProductID int64    `json:"productId"`
	Qty       int      `json:"qty"`
	Discount  Discount `json:"discount"`
}

type CheckoutRequest struct {
	Items         []CheckoutLine  `json:"items"`
	BillDiscount  Discount        `json:"billDiscount"`
	PaymentMethod string          `json:"paymentMethod"`
	CashReceived  decimal.Decimal `json:"cashReceived"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
}

type PaymentRequest struct {
	PaymentMethod string          `json:"paymentMethod"`
	CashReceived  decimal.Decimal `json:"cashReceived"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
}

type CheckoutResponse struct {
	Sale            Sale               `json:"sale"`
	InvoiceID       string             `json:"invoiceId"`
	Change          decimal.Decimal    `json:"change"`
	StockSyncErrors []StockSyncFailure `json:"stockSyncErrors,omitempty"`
}

type StockSyncFailure struct {
	ProductID int64  `json:"productId"`
	Delta     int    `json:"delta"`
	Error     string `json:"error"`
}

type ReturnRequest struct {
	LineIndex int `json:"lineIndex"`
	Qty       int `json:"qty"`
}

type ReturnResponse struct {
	Sale            Sale               `json:"sale"`
	RefundDue       decimal.Decimal    `json:"refundDue"`
	StockSyncErrors []StockSyncFailure `json:"stockSyncErrors,omitempty"`
}

type SaleView struct {
	Sale      Sale   `json:"sale"`
	InvoiceID string `json:"invoiceId"`
	Pricing   Quote  `json:"pricing"`
}

type Backup struct {
	Version   int        `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      BackupData `json:"data"`
}

type BackupData struct {
	Products []Product `json:"products"`
	Sales    []Sale    `json:"sales"`
}

type RestoreRequest struct {
	Products []Product `json:"products,omitempty"`
	Sales    []Sale    `json:"sales,omitempty"`
}
