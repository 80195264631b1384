package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

func main() {
	inFile := flag.String("in", "", "input sales file (.csv or .xlsx)")
	outDir := flag.String("out", "", "output directory for CSV reports (omit to skip export)")
	topN := flag.Int("top", 10, "number of entries for top product/customer rankings")
	bom := flag.Bool("bom", false, "prefix exported CSV files with a UTF-8 BOM")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <file.csv|file.xlsx> [-out <dir>] [-top N] [-bom]")
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.Logging.Output = "console"
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if err := run(logger, cfg, *inFile, *outDir, *topN, *bom); err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, inFile, outDir string, topN int, bom bool) error {
	ctx := infrastructure.EnsureTraceID(context.Background())

	raw, err := os.ReadFile(inFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	service := services.NewDatasetService(logger, dataprocessing.ParserConfig{
		SampleLines: cfg.Ingest.SampleLines,
	})
	summary, err := service.Upload(ctx, raw, filepath.Base(inFile))
	if err != nil {
		return err
	}

	printSummary(summary)

	metrics, err := collectMetrics(ctx, service, summary)
	if err != nil {
		return err
	}
	printMetrics(metrics)

	byMonth, err := service.ByTime(ctx, domain.GranularityMonth)
	if err != nil {
		return err
	}
	byCategory, err := service.ByCategory(ctx, domain.FieldCategory)
	if err != nil {
		return err
	}
	printAggregation("Monthly sales", byMonth)
	printAggregation("Sales by category", byCategory)

	topProducts, err := service.TopN(ctx, domain.FieldProductName, topN)
	if err == nil {
		printAggregation(fmt.Sprintf("Top %d products", topN), topProducts)
	} else if apperrors.TypeOf(err) != apperrors.ErrTypeInvalidField {
		return err
	}

	if outDir == "" {
		return nil
	}
	return export(logger, outDir, bom, metrics, byMonth, byCategory)
}

func printSummary(s domain.DatasetSummary) {
	fmt.Printf("Dataset: %s rows (%s dropped), %s/%s, dates %s\n",
		exporter.FormatCount(s.RowCount),
		exporter.FormatCount(s.DroppedRows),
		s.Encoding, s.Delimiter, s.DateFormat)
	fmt.Printf("  Range: %s to %s\n", s.DateFrom.Format("2006-01-02"), s.DateTo.Format("2006-01-02"))
	fmt.Printf("  Total sales: %s\n", exporter.FormatCurrency(s.TotalSales))
	if s.OptionalSeen[domain.FieldProfit] {
		fmt.Printf("  Total profit: %s\n", exporter.FormatCurrency(s.TotalProfit))
	}
}

func collectMetrics(ctx context.Context, service *services.DatasetService, summary domain.DatasetSummary) ([]domain.MetricResult, error) {
	var metrics []domain.MetricResult
	if len(summary.Years) >= 2 {
		last := summary.Years[len(summary.Years)-1]
		prev := summary.Years[len(summary.Years)-2]
		yoy, err := service.YoYGrowth(ctx, last, prev, "sales")
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, yoy)
	}
	margin, err := service.ProfitMargin(ctx)
	if err != nil {
		return nil, err
	}
	return append(metrics, margin), nil
}

func printMetrics(metrics []domain.MetricResult) {
	for _, m := range metrics {
		switch m.Name {
		case "yoy_growth_pct":
			fmt.Printf("  YoY sales growth %s vs %s: %s\n",
				m.CurrentPeriod, m.PreviousPeriod, exporter.FormatPercentage(m.Value))
		case "profit_margin_pct":
			fmt.Printf("  Profit margin: %s\n", exporter.FormatPercentage(m.Value))
		}
	}
}

func printAggregation(title string, result domain.AggregationResult) {
	if len(result.Rows) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, row := range result.Rows {
		fmt.Printf("  %-24s %14s", row.Key, exporter.FormatCurrency(row.Sales))
		if result.HasProfit {
			fmt.Printf("  %14s", exporter.FormatCurrency(row.Profit))
		}
		fmt.Printf("  (%s rows)\n", exporter.FormatCount(row.Count))
	}
}

func export(logger *slog.Logger, outDir string, bom bool, metrics []domain.MetricResult, results ...domain.AggregationResult) error {
	writer := exporter.NewCSVWriter(logger)
	if len(metrics) > 0 {
		path := filepath.Join(outDir, "metrics.csv")
		if err := writer.WriteMetrics(path, metrics, bom); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	for _, result := range results {
		if len(result.Rows) == 0 {
			continue
		}
		path := filepath.Join(outDir, result.Dimension+".csv")
		if err := writer.WriteAggregation(path, result, bom); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
