package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
)

func sampleCart(terminalID string) domain.Cart {
	return domain.Cart{
		TerminalID: terminalID,
		Lines: []domain.CartLine{{
			ProductID: 1,
			Code:      "PRD-00000001",
			Name:      "Kids Shirt",
			Qty:       2,
			UnitPrice: decimal.NewFromInt(100),
			UnitCost:  decimal.NewFromInt(60),
			Discount:  domain.Fixed(decimal.NewFromInt(5)),
		}},
		BillDiscount: domain.Percent(decimal.NewFromInt(10)),
	}
}

func TestMemoryCartCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCartCache()

	if _, ok, _ := c.Get(ctx, "t1"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := c.Set(ctx, sampleCart("t1"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := c.Get(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	got.Lines[0].Qty = 99

	again, _, _ := c.Get(ctx, "t1")
	if again.Lines[0].Qty != 2 {
		t.Fatalf("cached cart was mutated through a returned copy")
	}

	if err := c.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "t1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryCartCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCartCache()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, sampleCart("t1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "t1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestRedisCartCacheIntegration(t *testing.T) {
	addr := os.Getenv("SKMART_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SKMART_TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	c := NewRedisCartCache(addr, os.Getenv("SKMART_TEST_REDIS_PASSWORD"), 0)
	defer c.Close()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	terminal := "test-" + uuid.NewString()
	defer c.Delete(ctx, terminal)

	if err := c.Set(ctx, sampleCart(terminal), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, terminal)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if !got.Lines[0].Discount.IsFixed() || !got.BillDiscount.Value().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discounts did not survive the round trip: %+v", got)
	}
}
