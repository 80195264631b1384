package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestWriteAggregation(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)

	result := domain.AggregationResult{
		Dimension: "category",
		HasProfit: true,
		Rows: []domain.AggregationRow{
			{Key: "Office", Sales: 500, Profit: 50.5, Count: 3},
			{Key: "Furniture", Sales: 350, Profit: 12, Count: 2},
		},
	}

	path := filepath.Join(dir, "reports", "category.csv")
	require.NoError(t, w.WriteAggregation(path, result, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"category,sales,profit,count\nOffice,500.00,50.50,3\nFurniture,350.00,12.00,2\n",
		string(data))
}

func TestWriteAggregationWithoutProfit(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)

	result := domain.AggregationResult{
		Dimension: "time_month",
		Rows:      []domain.AggregationRow{{Key: "2023-01", Sales: 100, Count: 1}},
	}

	path := filepath.Join(dir, "monthly.csv")
	require.NoError(t, w.WriteAggregation(path, result, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time_month,sales,count\n2023-01,100.00,1\n", string(data))
}

func TestWriteCSVBOM(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)

	path := filepath.Join(dir, "bom.csv")
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}},
		BOMPrefix: true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, "a,b\n1,2\n", string(data[3:]))
}

func TestWriteMetrics(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil)

	path := filepath.Join(dir, "metrics.csv")
	metrics := []domain.MetricResult{
		{Name: "yoy_growth_pct", Value: 50, CurrentPeriod: "2023", PreviousPeriod: "2022"},
		{Name: "profit_margin_pct", Value: 12.5},
	}
	require.NoError(t, w.WriteMetrics(path, metrics, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"metric,value,current_period,previous_period\nyoy_growth_pct,50.00,2023,2022\nprofit_margin_pct,12.50,,\n",
		string(data))
}
