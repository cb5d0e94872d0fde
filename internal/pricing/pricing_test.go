package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skmart/backend/internal/domain"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestPriceBillPercentDiscount(t *testing.T) {
	quote := Price([]Line{{Qty: 2, UnitPrice: d("100"), UnitCost: d("60")}}, domain.Percent(d("10")))

	requireAmount(t, "200", quote.Subtotal)
	requireAmount(t, "0", quote.ItemDiscountTotal)
	requireAmount(t, "20", quote.BillDiscountAmount)
	requireAmount(t, "180", quote.Total)
	requireAmount(t, "20", quote.TotalDiscount)
	// line profit 200-120 = 80, minus bill discount once
	requireAmount(t, "60", quote.Profit)
	require.Len(t, quote.Lines, 1)
}

func TestPriceMixedLineDiscounts(t *testing.T) {
	lines := []Line{
		{Qty: 3, UnitPrice: d("50"), UnitCost: d("30"), Discount: domain.Fixed(d("15"))},
		{Qty: 1, UnitPrice: d("80"), UnitCost: d("40"), Discount: domain.Percent(d("25"))},
	}
	quote := Price(lines, domain.Fixed(d("5")))

	requireAmount(t, "230", quote.Subtotal)
	requireAmount(t, "35", quote.ItemDiscountTotal)
	requireAmount(t, "195", quote.AfterItemDiscount)
	requireAmount(t, "5", quote.BillDiscountAmount)
	requireAmount(t, "190", quote.Total)
	requireAmount(t, "40", quote.TotalDiscount)

	requireAmount(t, "135", quote.Lines[0].Net)
	requireAmount(t, "45", quote.Lines[0].Profit)
	requireAmount(t, "60", quote.Lines[1].Net)
	requireAmount(t, "20", quote.Lines[1].Profit)
	requireAmount(t, "60", quote.Profit)
}

func TestPriceFloorsAtZeroWithoutError(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: d("10"), UnitCost: d("8"), Discount: domain.Fixed(d("25"))}}
	quote := Price(lines, domain.Fixed(d("100")))

	requireAmount(t, "0", quote.Lines[0].Net)
	requireAmount(t, "-15", quote.AfterItemDiscount)
	requireAmount(t, "0", quote.Total)
	requireAmount(t, "0", quote.Profit)
}

func TestPriceTotalMatchesSubtotalLessDiscount(t *testing.T) {
	cases := []struct {
		name  string
		lines []Line
		bill  domain.Discount
	}{
		{"empty", nil, domain.Percent(d("10"))},
		{"percent over 100", []Line{{Qty: 1, UnitPrice: d("40"), Discount: domain.Percent(d("150"))}}, domain.Discount{}},
		{"negative price", []Line{{Qty: 2, UnitPrice: d("-5")}}, domain.Fixed(d("1"))},
		{"fractional", []Line{{Qty: 7, UnitPrice: d("0.35"), Discount: domain.Percent(d("12.5"))}}, domain.Percent(d("3"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := Price(tc.lines, tc.bill)
			want := quote.Subtotal.Sub(quote.ItemDiscountTotal).Sub(quote.BillDiscountAmount)
			if want.IsNegative() {
				want = decimal.Zero
			}
			require.True(t, want.Equal(quote.Total))
			require.False(t, quote.Total.IsNegative())
		})
	}
}

func TestForSaleMatchesCheckoutQuote(t *testing.T) {
	sale := domain.Sale{
		Items: []domain.SaleItem{
			{Qty: 2, Price: d("100"), Cost: d("60"), DiscountType: domain.DiscountFixed, DiscountValue: d("10")},
		},
		BillDiscountType: domain.DiscountPercent,
		BillDiscountRate: d("10"),
	}
	quote := ForSale(sale)

	requireAmount(t, "190", quote.AfterItemDiscount)
	requireAmount(t, "19", quote.BillDiscountAmount)
	requireAmount(t, "171", quote.Total)
}

func TestRemainingTotalsIgnoresDiscounts(t *testing.T) {
	total, profit := RemainingTotals([]domain.SaleItem{
		{Qty: 2, Price: d("100"), Cost: d("60"), DiscountType: domain.DiscountFixed, DiscountValue: d("10")},
		{Qty: 1, Price: d("5"), Cost: d("2")},
	})
	requireAmount(t, "205", total)
	requireAmount(t, "83", profit)
}
