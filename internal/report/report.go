// Package report aggregates the sale ledger into period totals and rankings.
// Nothing is cached; each call walks the whole ledger.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"skmart/backend/internal/domain"
)

const (
	TopProductLimit  = 5
	TopCategoryLimit = 4
)

type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// Cutoffs are the inclusive starts of the today, week and month buckets.
type Cutoffs struct {
	Day   time.Time
	Week  time.Time
	Month time.Time
}

func ComputeCutoffs(now time.Time, opts Options) Cutoffs {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	back := (int(local.Weekday()) - int(opts.WeekStart) + 7) % 7
	return Cutoffs{
		Day:   day,
		Week:  day.AddDate(0, 0, -back),
		Month: time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc),
	}
}

type productAgg struct {
	id      int64
	name    string
	qty     int
	revenue decimal.Decimal
}

type categoryAgg struct {
	name    string
	revenue decimal.Decimal
}

// Build derives the report as of now. Categories come from the current
// catalog; lines whose product is gone count under the default category.
func Build(sales []domain.Sale, products []domain.Product, now time.Time, opts Options) domain.Report {
	cut := ComputeCutoffs(now, opts)

	categoryOf := make(map[int64]string, len(products))
	for _, p := range products {
		categoryOf[p.ID] = p.Category
	}

	rep := domain.Report{GeneratedAt: now}
	byProduct := map[int64]*productAgg{}
	byCategory := map[string]*categoryAgg{}
	var categoryOrder []string

	for _, sale := range sales {
		if !sale.Timestamp.Before(cut.Day) {
			rep.Today = addPeriod(rep.Today, sale)
		}
		if !sale.Timestamp.Before(cut.Week) {
			rep.Week = addPeriod(rep.Week, sale)
		}
		if !sale.Timestamp.Before(cut.Month) {
			rep.Month = addPeriod(rep.Month, sale)
		}

		for _, item := range sale.Items {
			revenue := item.Price.Mul(decimal.NewFromInt(int64(item.Qty)))

			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &productAgg{id: item.ProductID, name: item.Name}
				byProduct[item.ProductID] = agg
			}
			agg.qty += item.Qty
			agg.revenue = agg.revenue.Add(revenue)

			cat, ok := categoryOf[item.ProductID]
			if !ok {
				cat = domain.DefaultCategoryName
			}
			cagg, ok := byCategory[cat]
			if !ok {
				cagg = &categoryAgg{name: cat}
				byCategory[cat] = cagg
				categoryOrder = append(categoryOrder, cat)
			}
			cagg.revenue = cagg.revenue.Add(revenue)
		}
	}

	rep.TopProducts = topProducts(byProduct)
	rep.TopCategories = topCategories(byCategory, categoryOrder)
	return rep
}

func addPeriod(p domain.PeriodTotals, sale domain.Sale) domain.PeriodTotals {
	return domain.PeriodTotals{
		Revenue: p.Revenue.Add(sale.TotalAmount),
		Profit:  p.Profit.Add(sale.TotalProfit),
	}
}

// topProducts ranks by units sold; equal counts keep ascending product id.
func topProducts(aggs map[int64]*productAgg) []domain.ProductRank {
	list := make([]*productAgg, 0, len(aggs))
	for _, a := range aggs {
		list = append(list, a)
	}
	slices.SortFunc(list, func(a, b *productAgg) int {
		if c := cmp.Compare(b.qty, a.qty); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(list) > TopProductLimit {
		list = list[:TopProductLimit]
	}

	out := make([]domain.ProductRank, 0, len(list))
	for _, a := range list {
		out = append(out, domain.ProductRank{ProductID: a.id, Name: a.name, Qty: a.qty, Revenue: a.revenue})
	}
	return out
}

// topCategories ranks by revenue and reports each share of the ranked
// categories' combined revenue.
func topCategories(aggs map[string]*categoryAgg, order []string) []domain.CategoryShare {
	list := make([]*categoryAgg, 0, len(order))
	for _, name := range order {
		list = append(list, aggs[name])
	}
	slices.SortStableFunc(list, func(a, b *categoryAgg) int {
		return b.revenue.Cmp(a.revenue)
	})
	if len(list) > TopCategoryLimit {
		list = list[:TopCategoryLimit]
	}

	total := decimal.Zero
	for _, a := range list {
		total = total.Add(a.revenue)
	}

	out := make([]domain.CategoryShare, 0, len(list))
	for _, a := range list {
		percent := decimal.Zero
		if !total.IsZero() {
			percent = a.revenue.Mul(decimal.NewFromInt(100)).Div(total).Round(2)
		}
		out = append(out, domain.CategoryShare{Name: a.name, Revenue: a.revenue, Percent: percent})
	}
	return out
}
