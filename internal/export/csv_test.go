package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skmart/backend/internal/domain"
)

func TestWriteSalesQuotesAndDefaults(t *testing.T) {
	sales := []domain.Sale{{
		ID:           42,
		Timestamp:    time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
		Items:        []domain.SaleItem{{Qty: 1}, {Qty: 2}},
		Subtotal:     decimal.RequireFromString("200"),
		TotalAmount:  decimal.RequireFromString("180"),
		TotalProfit:  decimal.RequireFromString("60.5"),
		CustomerName: "Silva, K.",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSales(&buf, sales, time.UTC))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, salesHeader, rows[0])
	require.Equal(t, []string{
		"2026-03-11 09:30:00", "INV-00000042", "Silva, K.", "", "Cash", "Paid", "200", "180", "60.5", "2",
	}, rows[1])
}

func TestWriteInventoryDefaultsThreshold(t *testing.T) {
	products := []domain.Product{{
		Code:        "PRD-00000001",
		Name:        `Shirt "XL"`,
		Category:    "Kids' Wear",
		CostPrice:   decimal.NewFromInt(60),
		RetailPrice: decimal.NewFromInt(100),
		Stock:       4,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, products))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, inventoryHeader, rows[0])
	require.Equal(t, []string{"PRD-00000001", `Shirt "XL"`, "Kids' Wear", "60", "100", "4", "3"}, rows[1])
}

func TestFilenames(t *testing.T) {
	now := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "Sales_History_2026-03-11.csv", SalesFilename(now))
	require.Equal(t, "sk_mart_inventory_2026-03-11.csv", InventoryFilename(now))
	require.Equal(t, "sk_mart_full_backup_2026-03-11.json", BackupFilename(now))
}
