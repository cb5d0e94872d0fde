package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"skmart/backend/internal/domain"
	"skmart/backend/internal/pricing"
	"skmart/backend/internal/xid"
)

func product(id int64, price string) domain.Product {
	return domain.Product{
		ID:          id,
		Code:        xid.Format(id, xid.ProductPrefix),
		Name:        "Item",
		RetailPrice: decimal.RequireFromString(price),
		CostPrice:   decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
	}
}

func TestAddBumpsExistingLine(t *testing.T) {
	c := New("t1")
	c = Add(c, product(1, "100"))
	c = Add(c, product(1, "100"))
	c = Add(c, product(2, "40"))

	require.Len(t, c.Lines, 2)
	require.Equal(t, 2, c.Lines[0].Qty)
	require.Equal(t, 1, c.Lines[1].Qty)
}

func TestAddCopiesProductDefaultDiscount(t *testing.T) {
	p := product(1, "100")
	p.DiscountType = domain.DiscountFixed
	p.DiscountValue = decimal.NewFromInt(7)

	c := Add(New("t1"), p)
	require.True(t, c.Lines[0].Discount.IsFixed())
	require.True(t, c.Lines[0].Discount.Value().Equal(decimal.NewFromInt(7)))
}

func TestReducersDoNotMutateInput(t *testing.T) {
	base := Add(New("t1"), product(1, "100"))

	bumped, err := ChangeQty(base, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, bumped.Lines[0].Qty)
	require.Equal(t, 1, base.Lines[0].Qty)

	discounted, err := SetLineDiscount(base, 1, domain.Percent(decimal.NewFromInt(10)))
	require.NoError(t, err)
	require.True(t, discounted.Lines[0].Discount.Value().Equal(decimal.NewFromInt(10)))
	require.True(t, base.Lines[0].Discount.Value().IsZero())

	removed := Remove(base, 1)
	require.Empty(t, removed.Lines)
	require.Len(t, base.Lines, 1)
}

func TestChangeQtyRemovesAtZero(t *testing.T) {
	c := Add(New("t1"), product(1, "100"))
	c, err := ChangeQty(c, 1, -1)
	require.NoError(t, err)
	require.True(t, IsEmpty(c))

	_, err = ChangeQty(c, 1, 1)
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestSetLineDiscountTypeKeepsValue(t *testing.T) {
	c := Add(New("t1"), product(1, "100"))
	c, err := SetLineDiscount(c, 1, domain.Percent(decimal.NewFromInt(15)))
	require.NoError(t, err)

	c, err = SetLineDiscountType(c, 1, domain.DiscountFixed)
	require.NoError(t, err)
	require.True(t, c.Lines[0].Discount.IsFixed())
	require.True(t, c.Lines[0].Discount.Amount(decimal.NewFromInt(100)).Equal(decimal.NewFromInt(15)))
}

func TestCartQuoteAndClear(t *testing.T) {
	c := Add(New("t1"), product(1, "100"))
	c, err := SetQty(c, 1, 2)
	require.NoError(t, err)
	c = SetBillDiscount(c, domain.Percent(decimal.NewFromInt(10)))

	quote := pricing.ForCart(c)
	require.True(t, quote.Total.Equal(decimal.NewFromInt(180)))

	req := CheckoutRequest(c, domain.PaymentRequest{PaymentMethod: domain.PaymentMethodCash, CashReceived: decimal.NewFromInt(200)})
	require.Len(t, req.Items, 1)
	require.Equal(t, 2, req.Items[0].Qty)
	require.True(t, req.BillDiscount.Value().Equal(decimal.NewFromInt(10)))

	cleared := Clear(c)
	require.True(t, IsEmpty(cleared))
	require.Equal(t, "t1", cleared.TerminalID)
	require.True(t, cleared.BillDiscount.Value().IsZero())
}
