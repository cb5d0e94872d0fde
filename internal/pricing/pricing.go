// Package pricing turns cart or sale lines into totals. Every function is pure;
// amounts are never rounded here.
package pricing

import (
	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
)

type Line struct {
	Qty       int
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Discount  domain.Discount
}

// Price computes the full breakdown for lines with a bill-level discount.
// Negative inputs pass through; only the net line and final totals are
// floored at zero.
func Price(lines []Line, bill domain.Discount) domain.Quote {
	quote := domain.Quote{Lines: make([]domain.LineQuote, 0, len(lines))}
	lineProfit := decimal.Zero

	for _, line := range lines {
		lq := priceLine(line)
		quote.Lines = append(quote.Lines, lq)
		quote.Subtotal = quote.Subtotal.Add(lq.LineTotal)
		quote.ItemDiscountTotal = quote.ItemDiscountTotal.Add(lq.Discount)
		lineProfit = lineProfit.Add(lq.Profit)
	}

	quote.AfterItemDiscount = quote.Subtotal.Sub(quote.ItemDiscountTotal)
	quote.BillDiscountAmount = bill.Amount(quote.AfterItemDiscount)
	quote.Total = floor(quote.AfterItemDiscount.Sub(quote.BillDiscountAmount))
	quote.TotalDiscount = quote.ItemDiscountTotal.Add(quote.BillDiscountAmount)

	// The bill discount comes off profit once, not spread across lines.
	quote.Profit = floor(lineProfit.Sub(quote.BillDiscountAmount))
	return quote
}

func priceLine(line Line) domain.LineQuote {
	qty := decimal.NewFromInt(int64(line.Qty))
	total := qty.Mul(line.UnitPrice)
	discount := line.Discount.Amount(total)
	net := floor(total.Sub(discount))
	return domain.LineQuote{
		LineTotal: total,
		Discount:  discount,
		Net:       net,
		Profit:    net.Sub(line.UnitCost.Mul(qty)),
	}
}

func ForCart(cart domain.Cart) domain.Quote {
	return Price(CartLines(cart.Lines), cart.BillDiscount)
}

// ForSale re-derives the breakdown from a recorded sale's snapshotted items.
// After a partial return the result can differ from the stored totals.
func ForSale(sale domain.Sale) domain.Quote {
	return Price(SaleLines(sale.Items), sale.BillDiscount())
}

func CartLines(lines []domain.CartLine) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Qty: l.Qty, UnitPrice: l.UnitPrice, UnitCost: l.UnitCost, Discount: l.Discount})
	}
	return out
}

func SaleLines(items []domain.SaleItem) []Line {
	out := make([]Line, 0, len(items))
	for _, item := range items {
		out = append(out, Line{Qty: item.Qty, UnitPrice: item.Price, UnitCost: item.Cost, Discount: item.Discount()})
	}
	return out
}

// RemainingTotals is what a sale is worth after a partial return: quantity
// times unit price and (price - cost) times quantity, with no discounts.
func RemainingTotals(items []domain.SaleItem) (total decimal.Decimal, profit decimal.Decimal) {
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Qty))
		total = total.Add(qty.Mul(item.Price))
		profit = profit.Add(item.Price.Sub(item.Cost).Mul(qty))
	}
	return total, profit
}

func floor(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
