package services

import (
	"context"
	"log/slog"
	"sync"

	"salespulse/internal/analytics"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// DatasetService owns the current canonical table and the memoized analytics
// derived from it. A new upload rebuilds the table from scratch and clears
// every cached result; there is no partial invalidation.
type DatasetService struct {
	parser *dataprocessing.Parser
	cache  *analytics.Cache
	logger *slog.Logger

	mu      sync.RWMutex
	dataset *domain.Dataset
	dropped int
}

// NewDatasetService creates a dataset service with its own parser and cache.
func NewDatasetService(logger *slog.Logger, parserConfig dataprocessing.ParserConfig) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		parser: dataprocessing.NewParser(logger, parserConfig),
		cache:  analytics.NewCache(),
		logger: logger.With(slog.String("component", "dataset_service")),
	}
}

// Upload consumes raw upload bytes, replaces the canonical table and returns
// the summary of the new dataset. On failure the previous dataset stays in
// place untouched.
func (s *DatasetService) Upload(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error) {
	dataset, dropped, err := s.parser.Parse(ctx, raw, filename)
	if err != nil {
		return domain.DatasetSummary{}, err
	}

	s.mu.Lock()
	s.dataset = dataset
	s.dropped = dropped
	s.mu.Unlock()
	s.cache.Invalidate()

	s.logger.InfoContext(ctx, "dataset replaced",
		slog.Int("rows", dataset.Len()),
		slog.Int("dropped", dropped),
		slog.String("fingerprint", dataset.Fingerprint[:12]))

	return s.buildSummary(dataset, dropped), nil
}

// Ready reports whether a dataset has been loaded.
func (s *DatasetService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset != nil
}

// Summary returns the summary of the currently loaded dataset.
func (s *DatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	dataset, dropped, err := s.current()
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return s.buildSummary(dataset, dropped), nil
}

// YoYGrowth returns the memoized year-over-year growth metric.
func (s *DatasetService) YoYGrowth(ctx context.Context, currentYear, previousYear int, metric analytics.Metric) (domain.MetricResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.MetricResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "yoy_growth", currentYear, previousYear, metric)
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.YoYGrowth(dataset, currentYear, previousYear, metric), nil
	})
	if err != nil {
		return domain.MetricResult{}, err
	}
	return result.(domain.MetricResult), nil
}

// MoMChange returns the memoized month-over-month change metric.
func (s *DatasetService) MoMChange(ctx context.Context, year, month int, metric analytics.Metric) (domain.MetricResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.MetricResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "mom_change", year, month, metric)
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.MoMChange(dataset, year, month, metric), nil
	})
	if err != nil {
		return domain.MetricResult{}, err
	}
	return result.(domain.MetricResult), nil
}

// ProfitMargin returns the memoized overall profit margin.
func (s *DatasetService) ProfitMargin(ctx context.Context) (domain.MetricResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.MetricResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "profit_margin")
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.ProfitMargin(dataset), nil
	})
	if err != nil {
		return domain.MetricResult{}, err
	}
	return result.(domain.MetricResult), nil
}

// ByTime returns the memoized time-bucket aggregation.
func (s *DatasetService) ByTime(ctx context.Context, granularity domain.Granularity) (domain.AggregationResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.AggregationResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "by_time", granularity)
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.ByTime(dataset, granularity)
	})
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return result.(domain.AggregationResult), nil
}

// ByCategory returns the memoized category/region aggregation.
func (s *DatasetService) ByCategory(ctx context.Context, field domain.Field) (domain.AggregationResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.AggregationResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "by_category", field)
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.ByCategory(dataset, field)
	})
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return result.(domain.AggregationResult), nil
}

// TopN returns the memoized top-N ranking.
func (s *DatasetService) TopN(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error) {
	dataset, _, err := s.current()
	if err != nil {
		return domain.AggregationResult{}, err
	}

	key := analytics.Key(dataset.Fingerprint, "top_n", field, n)
	result, err := s.cache.Do(key, func() (interface{}, error) {
		return analytics.TopN(dataset, field, n)
	})
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return result.(domain.AggregationResult), nil
}

func (s *DatasetService) current() (*domain.Dataset, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, 0, apperrors.NewNoDatasetError()
	}
	return s.dataset, s.dropped, nil
}

func (s *DatasetService) buildSummary(dataset *domain.Dataset, dropped int) domain.DatasetSummary {
	from, to := dataset.DateRange()

	optional := make(map[domain.Field]bool, len(domain.OptionalFields))
	for _, f := range domain.OptionalFields {
		optional[f] = dataset.Has(f)
	}

	distinct := make(map[domain.Field]int)
	for _, f := range []domain.Field{domain.FieldCategory, domain.FieldRegion, domain.FieldProductName, domain.FieldCustomerName} {
		if !dataset.Has(f) {
			continue
		}
		seen := make(map[string]struct{})
		for _, row := range dataset.Rows {
			if v := row.Text(f); v != "" {
				seen[v] = struct{}{}
			}
		}
		distinct[f] = len(seen)
	}

	return domain.DatasetSummary{
		RowCount:       dataset.Len(),
		DroppedRows:    dropped,
		Encoding:       dataset.Format.Encoding,
		Delimiter:      dataset.Format.DelimiterName(),
		DateFormat:     dataset.DateFormat,
		DateFrom:       from,
		DateTo:         to,
		TotalSales:     dataset.TotalSales(),
		TotalProfit:    dataset.TotalProfit(),
		Years:          dataset.Years(),
		Columns:        dataset.Columns,
		OptionalSeen:   optional,
		DistinctValues: distinct,
	}
}
