package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/pricing"
	"skmart/backend/internal/store"
)

// ReturnItem takes req.Qty units of one line back. The remaining lines are
// re-totalled at undiscounted unit price; the bill discount is not applied
// again and the subtotal keeps its recorded value.
func (s *Service) ReturnItem(ctx context.Context, saleID int64, req domain.ReturnRequest) (domain.ReturnResponse, error) {
	if req.Qty < 1 {
		return domain.ReturnResponse{}, fmt.Errorf("%w: return quantity must be at least 1", ErrInvalidRequest)
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return domain.ReturnResponse{}, err
	}
	if req.LineIndex < 0 || req.LineIndex >= len(sale.Items) {
		return domain.ReturnResponse{}, ErrLineNotFound
	}

	item := sale.Items[req.LineIndex]
	if req.Qty > item.Qty {
		return domain.ReturnResponse{}, fmt.Errorf("%w: %d requested, %d purchased", ErrReturnQtyExceeded, req.Qty, item.Qty)
	}

	next := store.CloneSale(*sale)
	if item.Qty == req.Qty {
		next.Items = append(next.Items[:req.LineIndex], next.Items[req.LineIndex+1:]...)
	} else {
		next.Items[req.LineIndex].Qty -= req.Qty
	}
	next.TotalAmount, next.TotalProfit = pricing.RemainingTotals(next.Items)
	next.Payment.Balance = next.Payment.Cash.Sub(next.TotalAmount)

	updated, err := s.repo.UpdateSale(ctx, saleID, next)
	if err != nil {
		return domain.ReturnResponse{}, fmt.Errorf("update sale: %w", err)
	}

	resp := domain.ReturnResponse{
		Sale:      *updated,
		RefundDue: sale.TotalAmount.Sub(updated.TotalAmount),
	}
	if syncErr := s.applyStock(ctx, saleID, []stockDelta{{productID: item.ProductID, delta: req.Qty}}); syncErr != nil {
		resp.StockSyncErrors = syncErr.Failures
		return resp, syncErr
	}

	log.Info().
		Int64("sale_id", saleID).
		Int64("product_id", item.ProductID).
		Int("qty", req.Qty).
		Msg("item returned")
	return resp, nil
}

// ReturnAll reverses the whole bill: every line goes back to stock and the
// sale is zeroed, with the full cash amount refundable.
func (s *Service) ReturnAll(ctx context.Context, saleID int64) (domain.ReturnResponse, error) {
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return domain.ReturnResponse{}, err
	}
	if len(sale.Items) == 0 {
		return domain.ReturnResponse{}, fmt.Errorf("%w: sale %d has nothing left to return", ErrInvalidRequest, saleID)
	}

	next := store.CloneSale(*sale)
	next.Items = []domain.SaleItem{}
	next.Subtotal = decimal.Zero
	next.TotalAmount = decimal.Zero
	next.TotalProfit = decimal.Zero
	next.Payment.Balance = next.Payment.Cash

	updated, err := s.repo.UpdateSale(ctx, saleID, next)
	if err != nil {
		return domain.ReturnResponse{}, fmt.Errorf("update sale: %w", err)
	}

	resp := domain.ReturnResponse{Sale: *updated, RefundDue: sale.TotalAmount}

	deltas := make([]stockDelta, 0, len(sale.Items))
	for _, item := range sale.Items {
		deltas = append(deltas, stockDelta{productID: item.ProductID, delta: item.Qty})
	}
	if syncErr := s.applyStock(ctx, saleID, deltas); syncErr != nil {
		resp.StockSyncErrors = syncErr.Failures
		return resp, syncErr
	}

	log.Info().Int64("sale_id", saleID).Int("lines", len(sale.Items)).Msg("full bill returned")
	return resp, nil
}
