package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine snapshots the product fields pricing needs when the line is added.
type CartLine struct {
	ProductID int64           `json:"productId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	Discount  Discount        `json:"discount"`
}

type Cart struct {
	TerminalID   string     `json:"terminalId"`
	Lines        []CartLine `json:"lines"`
	BillDiscount Discount   `json:"billDiscount"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CartAddRequest struct {
	ProductID int64 `json:"productId"`
}

// CartLineUpdateRequest applies whichever fields are set.
type CartLineUpdateRequest struct {
	Delta        *int          `json:"delta,omitempty"`
	Qty          *int          `json:"qty,omitempty"`
	Discount     *Discount     `json:"discount,omitempty"`
	DiscountType *DiscountKind `json:"discountType,omitempty"`
}

type CartView struct {
	Cart  Cart  `json:"cart"`
	Quote Quote `json:"quote"`
}

type CartCheckoutRequest struct {
	PaymentRequest
}

type LineQuote struct {
	LineTotal decimal.Decimal `json:"lineTotal"`
	Discount  decimal.Decimal `json:"discount"`
	Net       decimal.Decimal `json:"net"`
	Profit    decimal.Decimal `json:"profit"`
}

type Quote struct {
	Lines              []LineQuote     `json:"lines"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ItemDiscountTotal  decimal.Decimal `json:"itemDiscountTotal"`
	AfterItemDiscount  decimal.Decimal `json:"afterItemDiscount"`
	BillDiscountAmount decimal.Decimal `json:"billDiscountAmount"`
	TotalDiscount      decimal.Decimal `json:"totalDiscount"`
	Total              decimal.Decimal `json:"total"`
	Profit             decimal.Decimal `json:"profit"`
}

type QuoteRequest struct {
	Items        []CheckoutLine `json:"items"`
	BillDiscount Discount       `json:"billDiscount"`
}
