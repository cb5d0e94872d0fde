package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountsEncodeAsNumbers(t *testing.T) {
	raw, err := json.Marshal(Payment{Cash: decimal.RequireFromString("200.50"), Balance: decimal.Zero})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"cash":200.5,"balance":0}` {
		t.Fatalf("unexpected encoding: %s", got)
	}

	var back Payment
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Cash.Equal(decimal.RequireFromString("200.5")) {
		t.Fatalf("unexpected cash: %s", back.Cash)
	}
}
