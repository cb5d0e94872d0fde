package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"skmart/backend/internal/cart"
	"skmart/backend/internal/domain"
	"skmart/backend/internal/pricing"
)

const maxTerminalIDLength = 64

func (s *Service) GetCart(ctx context.Context, terminalID string) (domain.CartView, error) {
	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CartView{}, err
	}
	return cartView(c), nil
}

// AddToCart puts one unit of the product on the terminal's cart.
func (s *Service) AddToCart(ctx context.Context, terminalID string, productID int64) (domain.CartView, error) {
	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CartView{}, err
	}
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.saveCart(ctx, cart.Add(c, *p))
}

// UpdateCartLine applies qty, then delta, then discount, then discount type,
// skipping whichever are unset.
func (s *Service) UpdateCartLine(ctx context.Context, terminalID string, productID int64, req domain.CartLineUpdateRequest) (domain.CartView, error) {
	if req.Qty == nil && req.Delta == nil && req.Discount == nil && req.DiscountType == nil {
		return domain.CartView{}, fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}

	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CartView{}, err
	}

	if req.Qty != nil {
		if c, err = cart.SetQty(c, productID, *req.Qty); err != nil {
			return domain.CartView{}, err
		}
	}
	if req.Delta != nil {
		if c, err = cart.ChangeQty(c, productID, *req.Delta); err != nil {
			return domain.CartView{}, err
		}
	}
	if req.Discount != nil {
		if c, err = cart.SetLineDiscount(c, productID, *req.Discount); err != nil {
			return domain.CartView{}, err
		}
	}
	if req.DiscountType != nil {
		if c, err = cart.SetLineDiscountType(c, productID, *req.DiscountType); err != nil {
			return domain.CartView{}, err
		}
	}
	return s.saveCart(ctx, c)
}

func (s *Service) RemoveCartLine(ctx context.Context, terminalID string, productID int64) (domain.CartView, error) {
	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CartView{}, err
	}
	if !hasLine(c, productID) {
		return domain.CartView{}, ErrLineNotFound
	}
	return s.saveCart(ctx, cart.Remove(c, productID))
}

func (s *Service) SetCartBillDiscount(ctx context.Context, terminalID string, discount domain.Discount) (domain.CartView, error) {
	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.saveCart(ctx, cart.SetBillDiscount(c, discount))
}

func (s *Service) ClearCart(ctx context.Context, terminalID string) (domain.CartView, error) {
	terminalID, err := normalizeTerminalID(terminalID)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.carts.Delete(ctx, terminalID); err != nil {
		return domain.CartView{}, fmt.Errorf("clear cart: %w", err)
	}
	return cartView(cart.New(terminalID)), nil
}

// CheckoutCart records the terminal's cart at the prices it was rung up with.
// The cart is cleared only when the sale and every stock decrement succeeded.
func (s *Service) CheckoutCart(ctx context.Context, terminalID string, payment domain.PaymentRequest) (domain.CheckoutResponse, error) {
	c, err := s.loadCart(ctx, terminalID)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	if cart.IsEmpty(c) {
		return domain.CheckoutResponse{}, ErrEmptyCart
	}

	catalog, err := s.catalogByID(ctx)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	items := make([]domain.SaleItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		if _, ok := catalog[line.ProductID]; !ok {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: product %d is no longer in the catalog", ErrInvalidRequest, line.ProductID)
		}
		kind, rate, value := line.Discount.Fields()
		items = append(items, domain.SaleItem{
			ProductID:     line.ProductID,
			Code:          line.Code,
			Name:          line.Name,
			Qty:           line.Qty,
			Price:         line.UnitPrice,
			Cost:          line.UnitCost,
			DiscountType:  kind,
			DiscountRate:  rate,
			DiscountValue: value,
		})
	}

	resp, err := s.record(ctx, items, c.BillDiscount, payment)
	if err != nil {
		return resp, err
	}
	if err := s.carts.Delete(ctx, c.TerminalID); err != nil {
		log.Warn().Err(err).Str("terminal", c.TerminalID).Int64("sale_id", resp.Sale.ID).Msg("failed to clear cart after checkout")
	}
	return resp, nil
}

func (s *Service) loadCart(ctx context.Context, terminalID string) (domain.Cart, error) {
	terminalID, err := normalizeTerminalID(terminalID)
	if err != nil {
		return domain.Cart{}, err
	}
	c, ok, err := s.carts.Get(ctx, terminalID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		return cart.New(terminalID), nil
	}
	return c, nil
}

func (s *Service) saveCart(ctx context.Context, c domain.Cart) (domain.CartView, error) {
	c.UpdatedAt = s.now().UTC()
	if err := s.carts.Set(ctx, c, s.cartTTL); err != nil {
		return domain.CartView{}, fmt.Errorf("save cart: %w", err)
	}
	return cartView(c), nil
}

func cartView(c domain.Cart) domain.CartView {
	return domain.CartView{Cart: c, Quote: pricing.ForCart(c)}
}

func hasLine(c domain.Cart, productID int64) bool {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

func normalizeTerminalID(terminalID string) (string, error) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" || len(terminalID) > maxTerminalIDLength {
		return "", fmt.Errorf("%w: terminal id must be 1-%d characters", ErrInvalidRequest, maxTerminalIDLength)
	}
	return terminalID, nil
}
