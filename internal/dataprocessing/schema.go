package dataprocessing

import (
	"strings"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// fieldSynonyms is the static lookup table mapping each logical field to the
// header spellings that are accepted for it. Matching is done on trimmed,
// case-folded header cells, so only lower-case entries belong here.
var fieldSynonyms = map[domain.Field][]string{
	domain.FieldOrderDate:    {"order date", "orderdate", "order_date", "date"},
	domain.FieldSales:        {"sales", "sale", "sales amount", "revenue"},
	domain.FieldProfit:       {"profit", "profits"},
	domain.FieldCategory:     {"category", "product category"},
	domain.FieldRegion:       {"region", "territory"},
	domain.FieldProductName:  {"product name", "productname", "product_name", "product"},
	domain.FieldCustomerName: {"customer name", "customername", "customer_name", "customer"},
}

// synonymIndex inverts fieldSynonyms for O(1) header lookups. Built once at
// package init so no string normalization happens at access sites.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]domain.Field {
	index := make(map[string]domain.Field)
	for field, synonyms := range fieldSynonyms {
		for _, s := range synonyms {
			index[s] = field
		}
	}
	return index
}

// NormalizeHeader resolves the source header row into a ColumnMap. It never
// fails: absent optional columns simply get no entry. When several header
// cells match the same logical field, the first occurrence in header order
// wins and the rest are ignored for that field.
func NormalizeHeader(header []string) domain.ColumnMap {
	cm := make(domain.ColumnMap)
	for i, cell := range header {
		normalized := normalizeHeaderCell(cell)
		field, ok := synonymIndex[normalized]
		if !ok {
			continue
		}
		if cm.Has(field) {
			continue
		}
		cm[field] = domain.Column{Index: i, Source: strings.TrimSpace(cell)}
	}
	return cm
}

func normalizeHeaderCell(cell string) string {
	cell = strings.TrimPrefix(cell, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(cell))
}

// RequireColumns verifies that every required logical field resolved to a
// source column. Absence is a schema error raised before any column
// validation runs.
func RequireColumns(cm domain.ColumnMap) error {
	if missing := cm.Missing(domain.RequiredFields...); len(missing) > 0 {
		return apperrors.NewMissingColumnError(missing)
	}
	return nil
}
