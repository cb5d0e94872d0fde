package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/xid"
)

const dateLayout = "2006-01-02 15:04:05"

var (
	salesHeader     = []string{"Date", "Invoice ID", "Customer", "Phone", "Method", "Status", "Subtotal", "Total Amount", "Profit", "Items Count"}
	inventoryHeader = []string{"Code", "Name", "Category", "Cost Price", "Retail Price", "Stock", "Low Stock Threshold"}
)

func SalesFilename(now time.Time) string {
	return fmt.Sprintf("Sales_History_%s.csv", now.Format("2006-01-02"))
}

func InventoryFilename(now time.Time) string {
	return fmt.Sprintf("sk_mart_inventory_%s.csv", now.Format("2006-01-02"))
}

func BackupFilename(now time.Time) string {
	return fmt.Sprintf("sk_mart_full_backup_%s.json", now.Format("2006-01-02"))
}

// WriteSales writes one row per sale with timestamps rendered in loc.
func WriteSales(w io.Writer, sales []domain.Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, s := range sales {
		customer := s.CustomerName
		if customer == "" {
			customer = domain.DefaultCustomerName
		}
		method := s.PaymentMethod
		if method == "" {
			method = domain.PaymentMethodCash
		}
		status := s.PaymentStatus
		if status == "" {
			status = domain.PaymentStatusPaid
		}
		row := []string{
			s.Timestamp.In(loc).Format(dateLayout),
			xid.Format(s.ID, xid.InvoicePrefix),
			customer,
			s.CustomerPhone,
			method,
			status,
			s.Subtotal.String(),
			s.TotalAmount.String(),
			s.TotalProfit.String(),
			strconv.Itoa(len(s.Items)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteInventory(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return err
	}
	for _, p := range products {
		threshold := p.LowStockThreshold
		if threshold <= 0 {
			threshold = domain.DefaultLowStockThreshold
		}
		row := []string{
			p.Code,
			p.Name,
			p.Category,
			p.CostPrice.String(),
			p.RetailPrice.String(),
			strconv.Itoa(p.Stock),
			strconv.Itoa(threshold),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
