package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/pricing"
	"skmart/backend/internal/xid"
)

const salesPageSize = 10

// ListSales returns one page of the ledger, newest first, together with the
// entry count and money totals of everything the filter matched.
func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) (domain.SaleListResponse, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.SaleListResponse{}, err
	}

	var day time.Time
	if filter.Date != "" {
		day, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(filter.Date), s.loc)
		if err != nil {
			return domain.SaleListResponse{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
		}
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	matched := make([]domain.Sale, 0, len(sales))
	resp := domain.SaleListResponse{}
	for _, sale := range sales {
		if !day.IsZero() && !sameDay(sale.Timestamp.In(s.loc), day) {
			continue
		}
		if query != "" && !matchesSale(sale, query) {
			continue
		}
		matched = append(matched, sale)
		resp.TotalAmount = resp.TotalAmount.Add(sale.TotalAmount)
		resp.TotalProfit = resp.TotalProfit.Add(sale.TotalProfit)
	}

	slices.SortStableFunc(matched, func(a, b domain.Sale) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	resp.TotalEntries = len(matched)
	resp.TotalPages = max(1, (len(matched)+salesPageSize-1)/salesPageSize)
	resp.Page = min(max(filter.Page, 1), resp.TotalPages)

	start := (resp.Page - 1) * salesPageSize
	end := min(start+salesPageSize, len(matched))
	resp.Sales = matched[start:end]
	return resp, nil
}

func sameDay(a time.Time, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func matchesSale(sale domain.Sale, query string) bool {
	fields := []string{
		xid.Format(sale.ID, xid.InvoicePrefix),
		sale.CustomerName,
		sale.CustomerPhone,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// GetSaleView is a read-only projection of one sale with its pricing
// re-derived from the stored items.
func (s *Service) GetSaleView(ctx context.Context, id int64) (domain.SaleView, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.SaleView{}, err
	}
	return domain.SaleView{
		Sale:      *sale,
		InvoiceID: xid.Format(sale.ID, xid.InvoicePrefix),
		Pricing:   pricing.ForSale(*sale),
	}, nil
}

// MarkSalePaid settles a credit sale as paid in full in cash. A sale that is
// already paid is returned as stored, keeping its recorded tender.
func (s *Service) MarkSalePaid(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale.PaymentStatus == domain.PaymentStatusPaid {
		return *sale, nil
	}

	sale.PaymentStatus = domain.PaymentStatusPaid
	sale.PaymentMethod = domain.PaymentMethodCash
	sale.Payment = domain.Payment{Cash: sale.TotalAmount, Balance: decimal.Zero}

	updated, err := s.repo.UpdateSale(ctx, id, *sale)
	if err != nil {
		return domain.Sale{}, err
	}
	log.Info().Int64("sale_id", id).Msg("credit sale marked paid")
	return *updated, nil
}

func (s *Service) ClearSales(ctx context.Context) error {
	if err := s.repo.ClearSales(ctx); err != nil {
		return err
	}
	log.Warn().Msg("sales history cleared")
	return nil
}
