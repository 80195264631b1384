package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// CSVWriter writes analytics results to CSV files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write CSV header row", err)
		}
	}
	for _, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}
	return nil
}

// WriteAggregation writes an aggregation result to a CSV file. The key
// column is named after the result's dimension; profit appears only when the
// source dataset carried it.
func (w *CSVWriter) WriteAggregation(path string, result domain.AggregationResult, bom bool) error {
	headers := []string{result.Dimension, "sales"}
	if result.HasProfit {
		headers = append(headers, "profit")
	}
	headers = append(headers, "count")

	records := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		record := []string{row.Key, formatFloat(row.Sales)}
		if result.HasProfit {
			record = append(record, formatFloat(row.Profit))
		}
		record = append(record, formatInt(row.Count))
		records[i] = record
	}

	return w.WriteCSV(path, WriteOptions{Headers: headers, Records: records, BOMPrefix: bom})
}

// WriteMetrics writes metric scalars to a CSV file with their period tags.
func (w *CSVWriter) WriteMetrics(path string, metrics []domain.MetricResult, bom bool) error {
	records := make([][]string, len(metrics))
	for i, m := range metrics {
		records[i] = []string{m.Name, formatFloat(m.Value), m.CurrentPeriod, m.PreviousPeriod}
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"metric", "value", "current_period", "previous_period"},
		Records:   records,
		BOMPrefix: bom,
	})
}
