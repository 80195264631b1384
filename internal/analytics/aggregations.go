package analytics

import (
	"fmt"
	"sort"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// group accumulates totals for one key, remembering first-seen order so that
// descending sorts can break ties by first appearance in the canonical table.
type group struct {
	key    string
	sales  float64
	profit float64
	count  int
}

func groupBy(ds *domain.Dataset, keyFn func(domain.Row) string) []*group {
	index := make(map[string]*group)
	var groups []*group
	for _, row := range ds.Rows {
		key := keyFn(row)
		g, ok := index[key]
		if !ok {
			g = &group{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.sales += row.Sales
		if row.Profit != nil {
			g.profit += *row.Profit
		}
		g.count++
	}
	return groups
}

func toResult(dimension string, groups []*group, hasProfit bool) domain.AggregationResult {
	rows := make([]domain.AggregationRow, len(groups))
	for i, g := range groups {
		rows[i] = domain.AggregationRow{Key: g.key, Sales: g.sales, Count: g.count}
		if hasProfit {
			rows[i].Profit = g.profit
		}
	}
	return domain.AggregationResult{Dimension: dimension, HasProfit: hasProfit, Rows: rows}
}

// ByTime groups the table by truncated order date and sums sales (and profit
// when the column is present), ordered chronologically. Periods with no rows
// are not synthesized: only buckets with at least one row appear.
func ByTime(ds *domain.Dataset, granularity domain.Granularity) (domain.AggregationResult, error) {
	var layout string
	switch granularity {
	case domain.GranularityDay:
		layout = "2006-01-02"
	case domain.GranularityMonth:
		layout = "2006-01"
	case domain.GranularityYear:
		layout = "2006"
	default:
		return domain.AggregationResult{}, fmt.Errorf("unsupported granularity %q", granularity)
	}

	groups := groupBy(ds, func(row domain.Row) string {
		return row.OrderDate.Format(layout)
	})

	// Zero-padded bucket keys sort lexicographically in date order.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].key < groups[j].key
	})

	return toResult("time_"+string(granularity), groups, ds.Has(domain.FieldProfit)), nil
}

// ByCategory groups by exact string match on the category or region column,
// ordered descending by sales total. An absent optional column yields an
// empty result rather than an error, matching what callers expect when they
// probe which dimensions a dataset supports.
func ByCategory(ds *domain.Dataset, field domain.Field) (domain.AggregationResult, error) {
	if field != domain.FieldCategory && field != domain.FieldRegion {
		return domain.AggregationResult{}, apperrors.NewInvalidFieldError(field)
	}
	if !ds.Has(field) {
		return domain.AggregationResult{Dimension: string(field)}, nil
	}

	groups := groupBy(ds, func(row domain.Row) string {
		return row.Text(field)
	})
	sortDescendingBySales(groups)

	return toResult(string(field), groups, ds.Has(domain.FieldProfit)), nil
}

// TopN groups by product or customer, sums sales, sorts descending by total
// with ties broken by first appearance in the canonical table, and truncates
// to n. Requesting a field that was never present in the original upload is
// an error, because an empty ranking would be indistinguishable from a real
// one.
func TopN(ds *domain.Dataset, field domain.Field, n int) (domain.AggregationResult, error) {
	if field != domain.FieldProductName && field != domain.FieldCustomerName {
		return domain.AggregationResult{}, apperrors.NewInvalidFieldError(field)
	}
	if !ds.Has(field) {
		return domain.AggregationResult{}, apperrors.NewInvalidFieldError(field)
	}

	groups := groupBy(ds, func(row domain.Row) string {
		return row.Text(field)
	})
	sortDescendingBySales(groups)

	if n < 0 {
		n = 0
	}
	if n < len(groups) {
		groups = groups[:n]
	}

	return toResult(string(field), groups, ds.Has(domain.FieldProfit)), nil
}

// sortDescendingBySales sorts stably so groups with equal totals keep their
// first-seen order.
func sortDescendingBySales(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].sales > groups[j].sales
	})
}
