package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"salespulse/pkg/contracts/domain"
)

// dateFormats are the supported date layouts in trial order: DD/MM/YYYY,
// DD-MM-YYYY, YYYY-MM-DD.
var dateFormats = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

// DateFormatNames returns the supported formats in user-facing notation.
func DateFormatNames() string {
	return "DD/MM/YYYY, DD-MM-YYYY, YYYY-MM-DD"
}

// parseNumeric parses a cell as a finite float. Commas are tolerated as
// thousands separators.
func parseNumeric(cell string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("value %q is not finite", cell)
	}
	return value, nil
}

// ValidateSales checks that every non-blank cell of the sales column parses
// as a finite number. The first offending cell fails the whole column with
// its row index and raw value in the reason. An entirely blank column
// validates vacuously; the table builder then drops every row and reports
// the empty result.
func ValidateSales(values []string) domain.ValidationResult {
	for i, cell := range values {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			continue
		}
		if _, err := parseNumeric(trimmed); err != nil {
			return domain.ValidationResult{
				IsValid: false,
				Reason:  fmt.Sprintf("Sales column contains non-numeric value %q at row %d", trimmed, i+1),
			}
		}
	}
	return domain.ValidationResult{IsValid: true}
}

// ValidateDates determines the locked date format for the column. The first
// matching format for the first non-blank cell becomes the assumed format
// for the whole column; later cells are parsed only with that format and
// dropped (counted, not fatal) when they fail it. Format search is never
// re-triggered per cell.
func ValidateDates(values []string) (domain.ValidationResult, string) {
	first := ""
	for _, cell := range values {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			first = trimmed
			break
		}
	}
	if first == "" {
		return domain.ValidationResult{IsValid: false, Reason: "Order Date column contains no values"}, ""
	}

	for _, format := range dateFormats {
		if _, err := time.Parse(format, first); err == nil {
			return domain.ValidationResult{IsValid: true}, format
		}
	}

	return domain.ValidationResult{
		IsValid: false,
		Reason: fmt.Sprintf("Order Date could not be parsed with any supported format (%s); first value was %q",
			DateFormatNames(), first),
	}, ""
}
