// Package storetest is the behaviour every store.Repository backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/store"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) store.Repository

func Run(t *testing.T, newRepo Factory) {
	t.Run("ProductLifecycle", func(t *testing.T) { testProductLifecycle(t, newRepo(t)) })
	t.Run("DuplicateCode", func(t *testing.T) { testDuplicateCode(t, newRepo(t)) })
	t.Run("AdjustStock", func(t *testing.T) { testAdjustStock(t, newRepo(t)) })
	t.Run("ReplaceProducts", func(t *testing.T) { testReplaceProducts(t, newRepo(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newRepo(t)) })
	t.Run("SaleLifecycle", func(t *testing.T) { testSaleLifecycle(t, newRepo(t)) })
	t.Run("SaleIDsSkipLegacy", func(t *testing.T) { testSaleIDsSkipLegacy(t, newRepo(t)) })
	t.Run("ClearSales", func(t *testing.T) { testClearSales(t, newRepo(t)) })
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, amount(want).Equal(got), "expected %s, got %s", want, got.String())
}

func SampleProduct(code string) domain.Product {
	return domain.Product{
		Code:              code,
		Name:              "Cotton Frock " + code,
		Category:          "Kids' Wear",
		CostPrice:         amount("640.50"),
		RetailPrice:       amount("950"),
		DiscountType:      domain.DiscountPercent,
		DiscountRate:      amount("5"),
		Stock:             10,
		LowStockThreshold: 2,
	}
}

func SampleSale(at time.Time) domain.Sale {
	return domain.Sale{
		Timestamp: at,
		Items: []domain.SaleItem{
			{ProductID: 1, Code: "PRD-00000001", Name: "Frock", Qty: 2, Price: amount("100"), Cost: amount("60"), DiscountType: domain.DiscountPercent, DiscountRate: amount("0")},
			{ProductID: 2, Code: "PRD-00000002", Name: "Diapers", Qty: 1, Price: amount("12.345"), Cost: amount("10"), DiscountType: domain.DiscountFixed, DiscountValue: amount("2")},
		},
		Subtotal:         amount("212.345"),
		TotalAmount:      amount("189.1105"),
		TotalProfit:      amount("19.1105"),
		BillDiscountType: domain.DiscountPercent,
		BillDiscountRate: amount("10"),
		Payment:          domain.Payment{Cash: amount("200"), Balance: amount("10.8895")},
		PaymentMethod:    domain.PaymentMethodCash,
		PaymentStatus:    domain.PaymentStatusPaid,
		CustomerName:     "Nimal",
		CustomerPhone:    "0771234567",
	}
}

func testProductLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	first, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000001"))
	require.NoError(t, err)
	second, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000002"))
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Greater(t, second.ID, first.ID)

	got, err := repo.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "PRD-00000001", got.Code)
	requireAmount(t, "640.50", got.CostPrice)
	requireAmount(t, "5", got.Discount().Value())
	require.Equal(t, 2, got.LowStockThreshold)

	edit := *got
	edit.Name = "Renamed"
	edit.DiscountType = domain.DiscountFixed
	edit.DiscountValue = amount("25")
	edit.DiscountRate = decimal.Zero
	_, err = repo.UpsertProduct(ctx, edit)
	require.NoError(t, err)

	got, err = repo.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.True(t, got.Discount().IsFixed())
	requireAmount(t, "25", got.Discount().Value())

	list, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)

	require.NoError(t, repo.DeleteProduct(ctx, first.ID))
	_, err = repo.GetProduct(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, repo.DeleteProduct(ctx, first.ID), store.ErrNotFound)
}

func testDuplicateCode(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	p, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000007"))
	require.NoError(t, err)

	_, err = repo.UpsertProduct(ctx, SampleProduct("PRD-00000007"))
	require.ErrorIs(t, err, store.ErrDuplicateCode)

	// saving a product under its own code is not a clash
	same := *p
	same.Stock = 99
	_, err = repo.UpsertProduct(ctx, same)
	require.NoError(t, err)
}

func testAdjustStock(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	p, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000001"))
	require.NoError(t, err)

	updated, err := repo.AdjustStock(ctx, p.ID, -3)
	require.NoError(t, err)
	require.Equal(t, 7, updated.Stock)

	updated, err = repo.AdjustStock(ctx, p.ID, -9)
	require.NoError(t, err)
	require.Equal(t, -2, updated.Stock)

	_, err = repo.AdjustStock(ctx, p.ID+1000, 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testReplaceProducts(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000001"))
	require.NoError(t, err)

	restored := []domain.Product{SampleProduct("PRD-00000010"), SampleProduct("PRD-00000011")}
	restored[0].ID = 10
	restored[1].ID = 11
	require.NoError(t, repo.ReplaceProducts(ctx, restored))

	list, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(10), list[0].ID)
	require.Equal(t, "PRD-00000011", list[1].Code)

	next, err := repo.UpsertProduct(ctx, SampleProduct("PRD-00000012"))
	require.NoError(t, err)
	require.Greater(t, next.ID, int64(11))

	// Products without an id are numbered after the highest explicit id.
	mixed := []domain.Product{SampleProduct("PRD-00000020"), SampleProduct("PRD-00000021")}
	mixed[1].ID = 1
	require.NoError(t, repo.ReplaceProducts(ctx, mixed))

	list, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(1), list[0].ID)
	require.Equal(t, "PRD-00000021", list[0].Code)
	require.Equal(t, int64(2), list[1].ID)
	require.Equal(t, "PRD-00000020", list[1].Code)
}

func testCategories(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	list, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	a, err := repo.AddCategory(ctx, "Gift Items")
	require.NoError(t, err)
	b, err := repo.AddCategory(ctx, "Gift Items")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	list, err = repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)

	require.NoError(t, repo.DeleteCategory(ctx, a.ID))
	require.ErrorIs(t, repo.DeleteCategory(ctx, a.ID), store.ErrNotFound)

	list, err = repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)
}

func testSaleLifecycle(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	at := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

	created, err := repo.CreateSale(ctx, SampleSale(at))
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	got, err := repo.GetSale(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, at.Equal(got.Timestamp))
	require.Len(t, got.Items, 2)
	require.Equal(t, "PRD-00000001", got.Items[0].Code)
	require.Equal(t, "PRD-00000002", got.Items[1].Code)
	requireAmount(t, "12.345", got.Items[1].Price)
	require.True(t, got.Items[1].Discount().IsFixed())
	requireAmount(t, "189.1105", got.TotalAmount)
	requireAmount(t, "10", got.BillDiscount().Value())
	requireAmount(t, "200", got.Payment.Cash)
	require.Equal(t, "Nimal", got.CustomerName)

	edit := *got
	edit.Items = edit.Items[:1]
	edit.Items[0].Qty = 1
	edit.TotalAmount = amount("100")
	edit.Payment.Balance = amount("100")
	_, err = repo.UpdateSale(ctx, created.ID, edit)
	require.NoError(t, err)

	got, err = repo.GetSale(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, 1, got.Items[0].Qty)
	requireAmount(t, "100", got.TotalAmount)

	edit.Items = nil
	_, err = repo.UpdateSale(ctx, created.ID, edit)
	require.NoError(t, err)
	got, err = repo.GetSale(ctx, created.ID)
	require.NoError(t, err)
	require.Empty(t, got.Items)

	_, err = repo.UpdateSale(ctx, 999, edit)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = repo.GetSale(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)

	second, err := repo.CreateSale(ctx, SampleSale(at.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, int64(2), second.ID)

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.Equal(t, int64(1), sales[0].ID)
	require.Equal(t, int64(2), sales[1].ID)
}

func testSaleIDsSkipLegacy(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	at := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	legacy := SampleSale(at)
	legacy.ID = 1707830400000
	recent := SampleSale(at)
	recent.ID = 4
	require.NoError(t, repo.ReplaceSales(ctx, []domain.Sale{legacy, recent}))

	created, err := repo.CreateSale(ctx, SampleSale(at))
	require.NoError(t, err)
	require.Equal(t, int64(5), created.ID)

	got, err := repo.GetSale(ctx, legacy.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
}

func testClearSales(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.CreateSale(ctx, SampleSale(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = repo.AddCategory(ctx, "Cosmetics & Perfumes")
	require.NoError(t, err)

	require.NoError(t, repo.ClearSales(ctx))

	sales, err := repo.ListSales(ctx)
	require.NoError(t, err)
	require.Empty(t, sales)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
}
