package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSales(t *testing.T) {
	tests := []struct {
		name       string
		values     []string
		wantValid  bool
		wantReason string
	}{
		{
			name:      "plain numbers",
			values:    []string{"100", "250.5", "-3"},
			wantValid: true,
		},
		{
			name:      "thousands separators tolerated",
			values:    []string{"1,200", "12,345.67"},
			wantValid: true,
		},
		{
			name:      "blank cells skipped",
			values:    []string{"100", "", "  ", "200"},
			wantValid: true,
		},
		{
			name:       "non-numeric value names the row",
			values:     []string{"100", "not_a_number", "300"},
			wantValid:  false,
			wantReason: `Sales column contains non-numeric value "not_a_number" at row 2`,
		},
		{
			name:      "entirely blank column validates vacuously",
			values:    []string{"", "  ", ""},
			wantValid: true,
		},
		{
			name:      "empty column validates vacuously",
			values:    nil,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSales(tt.values)
			assert.Equal(t, tt.wantValid, result.IsValid)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
		})
	}
}

func TestValidateDates(t *testing.T) {
	tests := []struct {
		name       string
		values     []string
		wantValid  bool
		wantFormat string
	}{
		{
			name:       "slash day first",
			values:     []string{"15/03/2023", "16/03/2023"},
			wantValid:  true,
			wantFormat: "02/01/2006",
		},
		{
			name:       "dash day first",
			values:     []string{"15-03-2023"},
			wantValid:  true,
			wantFormat: "02-01-2006",
		},
		{
			name:       "iso",
			values:     []string{"2023-03-15"},
			wantValid:  true,
			wantFormat: "2006-01-02",
		},
		{
			name:       "leading blanks skipped before locking",
			values:     []string{"", "  ", "2023-03-15"},
			wantValid:  true,
			wantFormat: "2006-01-02",
		},
		{
			name:      "unparseable first value",
			values:    []string{"March 15, 2023"},
			wantValid: false,
		},
		{
			name:      "no values at all",
			values:    []string{"", ""},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, format := ValidateDates(tt.values)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestValidateDatesFailureReason(t *testing.T) {
	result, _ := ValidateDates([]string{"15.03.2023"})
	require.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "DD/MM/YYYY, DD-MM-YYYY, YYYY-MM-DD")
	assert.Contains(t, result.Reason, `"15.03.2023"`)
}

func TestValidateDatesLocksFirstMatchingFormat(t *testing.T) {
	// 05/04/2023 is ambiguous between day-first and month-first readings;
	// the supported day-first layout locks, so this is April 5th.
	result, format := ValidateDates([]string{"05/04/2023"})
	require.True(t, result.IsValid)
	assert.Equal(t, "02/01/2006", format)
}
