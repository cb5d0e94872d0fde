package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"skmart/backend/internal/store"
	"skmart/backend/internal/store/storetest"
)

func TestMemoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository { return New() })
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fail := false
	s := FromSnapshot(Snapshot{}, func(Snapshot) error {
		if fail {
			return errors.New("disk full")
		}
		return nil
	})

	p, err := s.UpsertProduct(ctx, storetest.SampleProduct("PRD-00000001"))
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	fail = true
	if _, err := s.AdjustStock(ctx, p.ID, -4); err == nil {
		t.Fatalf("expected persist failure to surface")
	}

	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Stock != 10 {
		t.Fatalf("expected stock rolled back to 10, got %d", got.Stock)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateSale(ctx, storetest.SampleSale(time.Now().UTC())); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	snap := s.Snapshot()
	snap.Sales[0].Items[0].Qty = 99

	sale, err := s.GetSale(ctx, 1)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if sale.Items[0].Qty != 2 {
		t.Fatalf("snapshot shares item storage with the store")
	}
}
