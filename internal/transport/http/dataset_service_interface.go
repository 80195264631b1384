package http

import (
	"context"

	"salespulse/internal/analytics"
	"salespulse/pkg/contracts/domain"
)

// DatasetServiceInterface defines what handlers need from the dataset
// service. Kept as an interface so handler tests can substitute a mock.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error)
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	Ready() bool

	YoYGrowth(ctx context.Context, currentYear, previousYear int, metric analytics.Metric) (domain.MetricResult, error)
	MoMChange(ctx context.Context, year, month int, metric analytics.Metric) (domain.MetricResult, error)
	ProfitMargin(ctx context.Context) (domain.MetricResult, error)

	ByTime(ctx context.Context, granularity domain.Granularity) (domain.AggregationResult, error)
	ByCategory(ctx context.Context, field domain.Field) (domain.AggregationResult, error)
	TopN(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error)
}
