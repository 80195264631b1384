// Package dataprocessing turns a raw, loosely-specified sales upload into the
// validated canonical table the analytics engines operate on.
//
// # Architecture
//
// The package is organized as a pipeline of small components:
//
// 1. Detector: resolves a usable text encoding and field delimiter from raw bytes
// 2. Normalizer: canonicalizes header names into a logical column map
// 3. Validator: checks sales/date columns and reports specific failure reasons
// 4. Builder: applies the validated coercions and produces the canonical table
//
// The Parser type orchestrates the whole pipeline:
//
//	parser := dataprocessing.NewParser(logger, dataprocessing.DefaultParserConfig())
//	dataset, err := parser.Parse(ctx, rawBytes, "orders.csv")
//
// # Data Flow
//
//	raw bytes → Detector → rows → Normalizer → Validator → Builder → domain.Dataset
//
// XLSX uploads skip byte-level detection: the workbook is read with excelize
// and its first populated sheet is fed to the same normalize/validate/build
// stages.
//
// # Error Handling
//
// Format and schema failures abort before any row processing; column-level
// content failures carry the offending row and raw value; single bad rows
// after a column format is locked are dropped and counted, never fatal.
package dataprocessing
