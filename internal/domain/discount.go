package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// Normalize maps anything unrecognised (including empty) to percent.
func (k DiscountKind) Normalize() DiscountKind {
	if strings.EqualFold(string(k), string(DiscountFixed)) {
		return DiscountFixed
	}
	return DiscountPercent
}

// Discount is either a percentage rate or a fixed amount. The zero value is a
// 0% discount.
type Discount struct {
	kind  DiscountKind
	value decimal.Decimal
}

func Percent(rate decimal.Decimal) Discount {
	return Discount{kind: DiscountPercent, value: rate}
}

func Fixed(amount decimal.Decimal) Discount {
	return Discount{kind: DiscountFixed, value: amount}
}

// DiscountFromFields reads the stored type/rate/value triple, using only the
// field selected by kind.
func DiscountFromFields(kind DiscountKind, rate decimal.Decimal, value decimal.Decimal) Discount {
	if kind.Normalize() == DiscountFixed {
		return Fixed(value)
	}
	return Percent(rate)
}

func (d Discount) Kind() DiscountKind {
	return d.kind.Normalize()
}

func (d Discount) IsFixed() bool {
	return d.Kind() == DiscountFixed
}

// Value is the rate for percent discounts and the amount for fixed ones.
func (d Discount) Value() decimal.Decimal {
	return d.value
}

// Amount is the discount taken off base. Negative inputs are not rejected.
func (d Discount) Amount(base decimal.Decimal) decimal.Decimal {
	if d.IsFixed() {
		return d.value
	}
	return base.Mul(d.value).Div(decimal.NewFromInt(100))
}

// Fields splits the discount back into the stored type/rate/value triple.
func (d Discount) Fields() (DiscountKind, decimal.Decimal, decimal.Decimal) {
	if d.IsFixed() {
		return DiscountFixed, decimal.Zero, d.value
	}
	return DiscountPercent, d.value, decimal.Zero
}

// WithKind keeps the numeric value and switches how it is interpreted.
func (d Discount) WithKind(kind DiscountKind) Discount {
	return Discount{kind: kind.Normalize(), value: d.value}
}

func (d Discount) String() string {
	if d.IsFixed() {
		return d.value.String()
	}
	return fmt.Sprintf("%s%%", d.value.String())
}

type discountJSON struct {
	Type  DiscountKind    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(discountJSON{Type: d.Kind(), Value: d.value})
}

func (d *Discount) UnmarshalJSON(data []byte) error {
	var raw discountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.kind = raw.Type.Normalize()
	d.value = raw.Value
	return nil
}
