package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/pricing"
	"skmart/backend/internal/store"
	"skmart/backend/internal/xid"
)

// Quote prices items at current catalog prices without touching anything.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return domain.Quote{}, err
	}
	return pricing.Price(pricing.SaleLines(items), req.BillDiscount), nil
}

// Checkout records a sale for req.Items at current catalog prices and then
// decrements stock line by line. When some decrements fail the response is
// still filled in and the error is a *StockSyncError.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	items, err := s.snapshotItems(ctx, req.Items)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	return s.record(ctx, items, req.BillDiscount, domain.PaymentRequest{
		PaymentMethod: req.PaymentMethod,
		CashReceived:  req.CashReceived,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
}

// snapshotItems copies the current price, cost and identity of each product
// into sale items.
func (s *Service) snapshotItems(ctx context.Context, lines []domain.CheckoutLine) ([]domain.SaleItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	catalog, err := s.catalogByID(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		if line.Qty < 1 {
			return nil, fmt.Errorf("%w: quantity for product %d must be at least 1", ErrInvalidRequest, line.ProductID)
		}
		p, ok := catalog[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d does not exist", ErrInvalidRequest, line.ProductID)
		}
		kind, rate, value := line.Discount.Fields()
		items = append(items, domain.SaleItem{
			ProductID:     p.ID,
			Code:          p.Code,
			Name:          p.Name,
			Qty:           line.Qty,
			Price:         p.RetailPrice,
			Cost:          p.CostPrice,
			DiscountType:  kind,
			DiscountRate:  rate,
			DiscountValue: value,
		})
	}
	return items, nil
}

func (s *Service) catalogByID(ctx context.Context) (map[int64]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return catalog, nil
}

// record prices items, validates payment, writes the sale and then applies the
// stock decrements.
func (s *Service) record(ctx context.Context, items []domain.SaleItem, bill domain.Discount, payment domain.PaymentRequest) (domain.CheckoutResponse, error) {
	method, err := normalizePaymentMethod(payment.PaymentMethod)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	quote := pricing.Price(pricing.SaleLines(items), bill)

	sale := domain.Sale{
		Timestamp:     s.now().UTC(),
		Items:         items,
		Subtotal:      quote.Subtotal,
		TotalAmount:   quote.Total,
		TotalProfit:   quote.Profit,
		PaymentMethod: method,
		CustomerName:  defaultString(strings.TrimSpace(payment.CustomerName), domain.DefaultCustomerName),
		CustomerPhone: strings.TrimSpace(payment.CustomerPhone),
	}
	sale.BillDiscountType, sale.BillDiscountRate, sale.BillDiscountValue = bill.Fields()

	switch method {
	case domain.PaymentMethodCash:
		if payment.CashReceived.LessThan(quote.Total) {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: received %s, total %s", ErrInsufficientFunds, payment.CashReceived, quote.Total)
		}
		sale.PaymentStatus = domain.PaymentStatusPaid
		sale.Payment = domain.Payment{Cash: payment.CashReceived, Balance: payment.CashReceived.Sub(quote.Total)}
	case domain.PaymentMethodCredit:
		sale.PaymentStatus = domain.PaymentStatusCredit
		sale.Payment = domain.Payment{Cash: decimal.Zero, Balance: decimal.Zero}
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("record sale: %w", err)
	}

	resp := domain.CheckoutResponse{
		Sale:      *created,
		InvoiceID: xid.Format(created.ID, xid.InvoicePrefix),
		Change:    created.Payment.Balance,
	}

	deltas := make([]stockDelta, 0, len(created.Items))
	for _, item := range created.Items {
		deltas = append(deltas, stockDelta{productID: item.ProductID, delta: -item.Qty})
	}
	syncErr := s.applyStock(ctx, created.ID, deltas)
	if syncErr != nil {
		resp.StockSyncErrors = syncErr.Failures
		return resp, syncErr
	}

	log.Info().
		Int64("sale_id", created.ID).
		Str("invoice", resp.InvoiceID).
		Str("total", created.TotalAmount.String()).
		Str("method", method).
		Msg("checkout recorded")
	return resp, nil
}

type stockDelta struct {
	productID int64
	delta     int
}

// applyStock runs each adjustment independently and collects the failures.
func (s *Service) applyStock(ctx context.Context, saleID int64, deltas []stockDelta) *StockSyncError {
	var syncErr *StockSyncError
	for _, d := range deltas {
		if _, err := s.repo.AdjustStock(ctx, d.productID, d.delta); err != nil {
			log.Error().
				Err(err).
				Int64("sale_id", saleID).
				Int64("product_id", d.productID).
				Int("delta", d.delta).
				Msg("stock adjustment failed after ledger write")
			if syncErr == nil {
				syncErr = &StockSyncError{SaleID: saleID}
			}
			syncErr.Failures = append(syncErr.Failures, domain.StockSyncFailure{
				ProductID: d.productID,
				Delta:     d.delta,
				Error:     stockErrorMessage(err),
			})
			syncErr.errs = append(syncErr.errs, fmt.Errorf("product %d: %w", d.productID, err))
		}
	}
	return syncErr
}

func stockErrorMessage(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return "product not found"
	}
	return "stock update failed"
}

func normalizePaymentMethod(method string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "", "cash":
		return domain.PaymentMethodCash, nil
	case "credit":
		return domain.PaymentMethodCredit, nil
	default:
		return "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidRequest, method)
	}
}
