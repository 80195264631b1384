// Package analytics provides the pure computation layer over the canonical
// table: period-over-period growth metrics, grouped aggregations and the
// memoization cache that keys their results by dataset content.
package analytics

import (
	"fmt"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// Metric selects which numeric column a growth metric runs over.
type Metric string

const (
	MetricSales  Metric = "sales"
	MetricProfit Metric = "profit"
)

// ParseMetric resolves a caller-supplied metric name, defaulting to sales.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "", string(MetricSales):
		return MetricSales, nil
	case string(MetricProfit):
		return MetricProfit, nil
	default:
		return "", fmt.Errorf("unsupported metric %q", name)
	}
}

func metricValue(row domain.Row, metric Metric) float64 {
	if metric == MetricProfit {
		if row.Profit == nil {
			return 0
		}
		return *row.Profit
	}
	return row.Sales
}

func sumYear(ds *domain.Dataset, year int, metric Metric) float64 {
	var total float64
	for _, row := range ds.Rows {
		if row.OrderDate.Year() == year {
			total += metricValue(row, metric)
		}
	}
	return total
}

func sumMonth(ds *domain.Dataset, year, month int, metric Metric) float64 {
	var total float64
	for _, row := range ds.Rows {
		if row.OrderDate.Year() == year && int(row.OrderDate.Month()) == month {
			total += metricValue(row, metric)
		}
	}
	return total
}

// growthPct implements the shared growth formula. A zero previous total is
// defined as zero growth regardless of the numerator; "no prior data" and
// "zero prior sales" are treated identically.
func growthPct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return ((current - previous) / previous) * 100
}

// YoYGrowth computes year-over-year growth of the metric as a percentage.
func YoYGrowth(ds *domain.Dataset, currentYear, previousYear int, metric Metric) domain.MetricResult {
	current := sumYear(ds, currentYear, metric)
	previous := sumYear(ds, previousYear, metric)
	return domain.MetricResult{
		Name:           "yoy_growth_pct",
		Value:          growthPct(current, previous),
		CurrentPeriod:  strconv.Itoa(currentYear),
		PreviousPeriod: strconv.Itoa(previousYear),
	}
}

// MoMChange computes the change of the metric against the immediately
// preceding calendar month. January compares against December of the
// previous year.
func MoMChange(ds *domain.Dataset, year, month int, metric Metric) domain.MetricResult {
	prevYear, prevMonth := year, month-1
	if month == 1 {
		prevYear, prevMonth = year-1, 12
	}

	current := sumMonth(ds, year, month, metric)
	previous := sumMonth(ds, prevYear, prevMonth, metric)
	return domain.MetricResult{
		Name:           "mom_change_pct",
		Value:          growthPct(current, previous),
		CurrentPeriod:  fmt.Sprintf("%04d-%02d", year, month),
		PreviousPeriod: fmt.Sprintf("%04d-%02d", prevYear, prevMonth),
	}
}

// ProfitMargin computes total profit over total sales as a percentage,
// zero when total sales is zero.
func ProfitMargin(ds *domain.Dataset) domain.MetricResult {
	sales := ds.TotalSales()
	profit := ds.TotalProfit()

	value := 0.0
	if sales != 0 {
		value = profit / sales * 100
	}
	return domain.MetricResult{Name: "profit_margin_pct", Value: value}
}
