package dataprocessing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// BuildTable applies the validated coercions to the raw data rows and
// produces the canonical table. Row-level problems never fail the build: a
// row whose date or sales cell cannot be coerced is dropped and counted,
// while a bad profit cell only nulls that field. A table that ends up with
// zero rows is an error even when the input was non-empty, because a dataset
// that is entirely bad is indistinguishable downstream from no upload at all.
func BuildTable(rows [][]string, cm domain.ColumnMap, lockedFormat string) (*domain.Dataset, int, error) {
	dateIdx := cm.Index(domain.FieldOrderDate)
	salesIdx := cm.Index(domain.FieldSales)

	var (
		kept    []domain.Row
		dropped int
	)

	for _, raw := range rows {
		dateCell := strings.TrimSpace(cellAt(raw, dateIdx))
		if dateCell == "" {
			dropped++
			continue
		}
		orderDate, err := time.Parse(lockedFormat, dateCell)
		if err != nil {
			dropped++
			continue
		}

		sales, err := parseNumeric(cellAt(raw, salesIdx))
		if err != nil {
			dropped++
			continue
		}

		row := domain.Row{
			OrderDate:    orderDate,
			Sales:        sales,
			Category:     cellAt(raw, cm.Index(domain.FieldCategory)),
			Region:       cellAt(raw, cm.Index(domain.FieldRegion)),
			ProductName:  cellAt(raw, cm.Index(domain.FieldProductName)),
			CustomerName: cellAt(raw, cm.Index(domain.FieldCustomerName)),
		}

		if profitIdx := cm.Index(domain.FieldProfit); profitIdx >= 0 {
			if cell := strings.TrimSpace(cellAt(raw, profitIdx)); cell != "" {
				if profit, err := parseNumeric(cell); err == nil {
					row.Profit = &profit
				}
			}
		}

		kept = append(kept, row)
	}

	if len(kept) == 0 {
		return nil, dropped, apperrors.NewEmptyResultError(dropped)
	}

	ds := &domain.Dataset{
		Rows:        kept,
		Columns:     cm,
		DateFormat:  lockedFormat,
		Fingerprint: fingerprintRows(kept),
	}
	return ds, dropped, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// fingerprintRows computes a content hash of the canonical table. The hash
// keys the analytics memo cache, so it must be stable for identical content
// regardless of the source file's encoding, delimiter or date format.
func fingerprintRows(rows []domain.Row) string {
	h := sha256.New()
	for _, row := range rows {
		h.Write([]byte(row.OrderDate.Format("2006-01-02")))
		h.Write([]byte{0x1f})
		h.Write([]byte(strconv.FormatFloat(row.Sales, 'g', -1, 64)))
		h.Write([]byte{0x1f})
		if row.Profit != nil {
			h.Write([]byte(strconv.FormatFloat(*row.Profit, 'g', -1, 64)))
		}
		for _, text := range []string{row.Category, row.Region, row.ProductName, row.CustomerName} {
			h.Write([]byte{0x1f})
			h.Write([]byte(text))
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
