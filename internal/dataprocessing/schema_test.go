package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   map[domain.Field]int
	}{
		{
			name:   "canonical names",
			header: []string{"order_date", "sales", "profit"},
			want: map[domain.Field]int{
				domain.FieldOrderDate: 0,
				domain.FieldSales:     1,
				domain.FieldProfit:    2,
			},
		},
		{
			name:   "synonyms and mixed case",
			header: []string{"Order Date", "REVENUE", "Product Category", "Territory"},
			want: map[domain.Field]int{
				domain.FieldOrderDate: 0,
				domain.FieldSales:     1,
				domain.FieldCategory:  2,
				domain.FieldRegion:    3,
			},
		},
		{
			name:   "surrounding whitespace",
			header: []string{"  date ", " Sales Amount "},
			want: map[domain.Field]int{
				domain.FieldOrderDate: 0,
				domain.FieldSales:     1,
			},
		},
		{
			name:   "first occurrence wins on duplicates",
			header: []string{"sales", "revenue", "date"},
			want: map[domain.Field]int{
				domain.FieldSales:     0,
				domain.FieldOrderDate: 2,
			},
		},
		{
			name:   "unknown headers ignored",
			header: []string{"date", "sales", "shipping mode", "discount"},
			want: map[domain.Field]int{
				domain.FieldOrderDate: 0,
				domain.FieldSales:     1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NormalizeHeader(tt.header)
			require.Len(t, cm, len(tt.want))
			for field, idx := range tt.want {
				assert.Equal(t, idx, cm.Index(field), "field %s", field)
			}
		})
	}
}

func TestNormalizeHeaderKeepsSourceSpelling(t *testing.T) {
	cm := NormalizeHeader([]string{"Order Date", "Revenue"})
	assert.Equal(t, "Order Date", cm[domain.FieldOrderDate].Source)
	assert.Equal(t, "Revenue", cm[domain.FieldSales].Source)
}

func TestRequireColumns(t *testing.T) {
	t.Run("required fields present", func(t *testing.T) {
		cm := NormalizeHeader([]string{"date", "sales"})
		assert.NoError(t, RequireColumns(cm))
	})

	t.Run("missing sales", func(t *testing.T) {
		cm := NormalizeHeader([]string{"date", "profit"})
		err := RequireColumns(cm)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeMissingColumn, apperrors.TypeOf(err))
		assert.Contains(t, err.Error(), "sales")
	})

	t.Run("missing both required columns", func(t *testing.T) {
		cm := NormalizeHeader([]string{"region", "category"})
		err := RequireColumns(cm)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order_date")
		assert.Contains(t, err.Error(), "sales")
	})
}
