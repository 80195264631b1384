// Package exporter renders analytics results for consumption outside the
// process: CSV files of aggregation and metric results (with optional UTF-8
// BOM for Excel compatibility) and the display formatters used by the CLI
// report.
package exporter
