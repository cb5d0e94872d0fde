package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PeriodTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type ProductRank struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CategoryShare struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Percent decimal.Decimal `json:"percent"`
}

type Report struct {
	GeneratedAt   time.Time       `json:"generatedAt"`
	Today         PeriodTotals    `json:"today"`
	Week          PeriodTotals    `json:"week"`
	Month         PeriodTotals    `json:"month"`
	TopProducts   []ProductRank   `json:"topProducts"`
	TopCategories []CategoryShare `json:"topCategories"`
}
