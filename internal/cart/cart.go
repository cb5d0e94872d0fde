// Package cart holds the reducers for a terminal's in-progress sale. Each
// reducer takes a cart and returns a new one; the input is never modified.
package cart

import (
	"errors"

	"skmart/backend/internal/domain"
)

var ErrLineNotFound = errors.New("line not found")

func New(terminalID string) domain.Cart {
	return domain.Cart{TerminalID: terminalID, Lines: []domain.CartLine{}}
}

// Add puts one unit of p in the cart, or bumps the existing line. A new line
// snapshots p's price, cost and default discount.
func Add(c domain.Cart, p domain.Product) domain.Cart {
	next := clone(c)
	if i := indexOf(next, p.ID); i >= 0 {
		next.Lines[i].Qty++
		return next
	}
	next.Lines = append(next.Lines, domain.CartLine{
		ProductID: p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Qty:       1,
		UnitPrice: p.RetailPrice,
		UnitCost:  p.CostPrice,
		Discount:  p.Discount(),
	})
	return next
}

func Remove(c domain.Cart, productID int64) domain.Cart {
	next := clone(c)
	lines := next.Lines[:0]
	for _, line := range next.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	next.Lines = lines
	return next
}

// ChangeQty adds delta to the line's quantity and drops the line once it
// reaches zero.
func ChangeQty(c domain.Cart, productID int64, delta int) (domain.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	return SetQty(c, productID, c.Lines[i].Qty+delta)
}

func SetQty(c domain.Cart, productID int64, qty int) (domain.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	if qty <= 0 {
		return Remove(c, productID), nil
	}
	next := clone(c)
	next.Lines[i].Qty = qty
	return next, nil
}

func SetLineDiscount(c domain.Cart, productID int64, discount domain.Discount) (domain.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	next := clone(c)
	next.Lines[i].Discount = discount
	return next, nil
}

// SetLineDiscountType reinterprets the line's current discount value as kind.
func SetLineDiscountType(c domain.Cart, productID int64, kind domain.DiscountKind) (domain.Cart, error) {
	i := indexOf(c, productID)
	if i < 0 {
		return c, ErrLineNotFound
	}
	next := clone(c)
	next.Lines[i].Discount = next.Lines[i].Discount.WithKind(kind)
	return next, nil
}

func SetBillDiscount(c domain.Cart, discount domain.Discount) domain.Cart {
	next := clone(c)
	next.BillDiscount = discount
	return next
}

// Clear empties the lines and resets the bill discount.
func Clear(c domain.Cart) domain.Cart {
	return New(c.TerminalID)
}

func IsEmpty(c domain.Cart) bool {
	return len(c.Lines) == 0
}

// CheckoutRequest turns the cart into a checkout payload paid as described by
// payment.
func CheckoutRequest(c domain.Cart, payment domain.PaymentRequest) domain.CheckoutRequest {
	items := make([]domain.CheckoutLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, domain.CheckoutLine{ProductID: line.ProductID, Qty: line.Qty, Discount: line.Discount})
	}
	return domain.CheckoutRequest{
		Items:         items,
		BillDiscount:  c.BillDiscount,
		PaymentMethod: payment.PaymentMethod,
		CashReceived:  payment.CashReceived,
		CustomerName:  payment.CustomerName,
		CustomerPhone: payment.CustomerPhone,
	}
}

func indexOf(c domain.Cart, productID int64) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func clone(c domain.Cart) domain.Cart {
	next := c
	next.Lines = make([]domain.CartLine, len(c.Lines))
	copy(next.Lines, c.Lines)
	return next
}
