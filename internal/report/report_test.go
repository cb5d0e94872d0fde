package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skmart/backend/internal/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sale(at time.Time, total, profit int64, items ...domain.SaleItem) domain.Sale {
	return domain.Sale{Timestamp: at, TotalAmount: dec(total), TotalProfit: dec(profit), Items: items}
}

func item(productID int64, name string, qty int, price int64) domain.SaleItem {
	return domain.SaleItem{ProductID: productID, Name: name, Qty: qty, Price: dec(price)}
}

// 2026-03-11 is a Wednesday.
var now = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func ledger() []domain.Sale {
	return []domain.Sale{
		sale(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), 100, 30, item(1, "Frock", 2, 50)),
		sale(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), 200, 50, item(2, "Gift Box", 5, 40)),
		sale(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), 50, 10, item(1, "Frock", 1, 50)),
		sale(time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC), 70, 20, item(99, "Old Stock", 1, 70)),
	}
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Frock", Category: "Kids' Wear"},
		{ID: 2, Name: "Gift Box", Category: "Gift Items"},
	}
}

func TestComputeCutoffsWeekStart(t *testing.T) {
	sunday := ComputeCutoffs(now, Options{Location: time.UTC, WeekStart: time.Sunday})
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), sunday.Day)
	require.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), sunday.Week)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), sunday.Month)

	monday := ComputeCutoffs(now, Options{Location: time.UTC, WeekStart: time.Monday})
	require.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), monday.Week)

	onSunday := ComputeCutoffs(time.Date(2026, 3, 8, 1, 0, 0, 0, time.UTC), Options{Location: time.UTC, WeekStart: time.Monday})
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), onSunday.Week)
}

func TestBuildPeriodBucketsAreCumulative(t *testing.T) {
	rep := Build(ledger(), catalog(), now, Options{Location: time.UTC, WeekStart: time.Sunday})

	require.True(t, rep.Today.Revenue.Equal(dec(100)))
	require.True(t, rep.Today.Profit.Equal(dec(30)))
	require.True(t, rep.Week.Revenue.Equal(dec(300)))
	require.True(t, rep.Week.Profit.Equal(dec(80)))
	require.True(t, rep.Month.Revenue.Equal(dec(350)))
	require.True(t, rep.Month.Profit.Equal(dec(90)))
}

func TestBuildRankings(t *testing.T) {
	rep := Build(ledger(), catalog(), now, Options{Location: time.UTC})

	require.Len(t, rep.TopProducts, 3)
	require.Equal(t, int64(2), rep.TopProducts[0].ProductID)
	require.Equal(t, 5, rep.TopProducts[0].Qty)
	require.Equal(t, int64(1), rep.TopProducts[1].ProductID)
	require.Equal(t, 3, rep.TopProducts[1].Qty)
	require.True(t, rep.TopProducts[1].Revenue.Equal(dec(150)))

	require.Len(t, rep.TopCategories, 3)
	require.Equal(t, "Gift Items", rep.TopCategories[0].Name)
	require.Equal(t, "47.62", rep.TopCategories[0].Percent.String())
	require.Equal(t, "Kids' Wear", rep.TopCategories[1].Name)
	require.Equal(t, "35.71", rep.TopCategories[1].Percent.String())
	require.Equal(t, domain.DefaultCategoryName, rep.TopCategories[2].Name)
	require.True(t, rep.TopCategories[2].Revenue.Equal(dec(70)))
}

func TestBuildLimitsRankings(t *testing.T) {
	var sales []domain.Sale
	var products []domain.Product
	for i := int64(1); i <= 7; i++ {
		sales = append(sales, sale(now, 10, 1, item(i, "P", int(i), 10)))
		products = append(products, domain.Product{ID: i, Category: string(rune('A' + i))})
	}

	rep := Build(sales, products, now, Options{Location: time.UTC})
	require.Len(t, rep.TopProducts, TopProductLimit)
	require.Equal(t, int64(7), rep.TopProducts[0].ProductID)
	require.Len(t, rep.TopCategories, TopCategoryLimit)

	sum := decimal.Zero
	for _, c := range rep.TopCategories {
		sum = sum.Add(c.Revenue)
	}
	// 70 + 60 + 50 + 40
	require.True(t, sum.Equal(dec(220)))
}

func TestBuildEmptyLedger(t *testing.T) {
	rep := Build(nil, nil, now, Options{})
	require.Empty(t, rep.TopProducts)
	require.Empty(t, rep.TopCategories)
	require.True(t, rep.Month.Revenue.IsZero())
}
