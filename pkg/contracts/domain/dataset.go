package domain

import (
	"sort"
	"time"
)

// Encoding identifies the text encoding detected for an upload.
type Encoding string

const (
	EncodingLatin1  Encoding = "latin-1"
	EncodingISO8859 Encoding = "iso-8859-1"
	EncodingCP1252  Encoding = "cp1252"
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-bom"
)

// DetectedFormat is the encoding and field delimiter resolved for an upload.
// It is produced once per upload and immutable afterward.
type DetectedFormat struct {
	Encoding  Encoding `json:"encoding"`
	Delimiter rune     `json:"-"`
}

// DelimiterName returns a human-readable name for the detected delimiter.
func (f DetectedFormat) DelimiterName() string {
	switch f.Delimiter {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	case 0:
		return "none"
	default:
		return string(f.Delimiter)
	}
}

// Field is a logical column role, independent of the literal header text
// found in the source file.
type Field string

const (
	FieldOrderDate    Field = "order_date"
	FieldSales        Field = "sales"
	FieldProfit       Field = "profit"
	FieldCategory     Field = "category"
	FieldRegion       Field = "region"
	FieldProductName  Field = "product_name"
	FieldCustomerName Field = "customer_name"
)

// RequiredFields are the logical fields every upload must provide.
var RequiredFields = []Field{FieldOrderDate, FieldSales}

// OptionalFields are recognized but not required.
var OptionalFields = []Field{FieldProfit, FieldCategory, FieldRegion, FieldProductName, FieldCustomerName}

// Column records where a logical field was found in the source header.
type Column struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
}

// ColumnMap maps logical fields to the source columns that matched them.
// Absent optional fields simply have no entry.
type ColumnMap map[Field]Column

// Has reports whether the logical field was present in the source header.
func (cm ColumnMap) Has(f Field) bool {
	_, ok := cm[f]
	return ok
}

// Index returns the source column index for a field, or -1 when absent.
func (cm ColumnMap) Index(f Field) int {
	c, ok := cm[f]
	if !ok {
		return -1
	}
	return c.Index
}

// Missing returns the subset of fields that have no matching source column.
func (cm ColumnMap) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !cm.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// ValidationResult is the outcome of a single column-level check. The first
// failing check for a column short-circuits with a specific reason.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason,omitempty"`
}

// Row is one validated, typed record of the canonical table. OrderDate and
// Sales are always set; rows that failed coercion never reach the table.
type Row struct {
	OrderDate    time.Time `json:"order_date"`
	Sales        float64   `json:"sales"`
	Profit       *float64  `json:"profit,omitempty"`
	Category     string    `json:"category,omitempty"`
	Region       string    `json:"region,omitempty"`
	ProductName  string    `json:"product_name,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
}

// Text returns the value of a text field on the row.
func (r Row) Text(f Field) string {
	switch f {
	case FieldCategory:
		return r.Category
	case FieldRegion:
		return r.Region
	case FieldProductName:
		return r.ProductName
	case FieldCustomerName:
		return r.CustomerName
	default:
		return ""
	}
}

// Dataset is the canonical table all metrics and aggregations operate on.
// It is rebuilt from scratch on every upload; there is no incremental
// mutation.
type Dataset struct {
	Rows        []Row
	Columns     ColumnMap
	Format      DetectedFormat
	DateFormat  string
	Fingerprint string
}

// Len returns the number of rows in the canonical table.
func (ds *Dataset) Len() int {
	return len(ds.Rows)
}

// Has reports whether an optional field was present in the original upload.
func (ds *Dataset) Has(f Field) bool {
	return ds.Columns.Has(f)
}

// Years returns the distinct order-date years in ascending order.
func (ds *Dataset) Years() []int {
	seen := make(map[int]struct{})
	for _, row := range ds.Rows {
		seen[row.OrderDate.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// DateRange returns the earliest and latest order dates in the table.
func (ds *Dataset) DateRange() (time.Time, time.Time) {
	var min, max time.Time
	for _, row := range ds.Rows {
		if min.IsZero() || row.OrderDate.Before(min) {
			min = row.OrderDate
		}
		if max.IsZero() || row.OrderDate.After(max) {
			max = row.OrderDate
		}
	}
	return min, max
}

// TotalSales returns the grand total of the sales column.
func (ds *Dataset) TotalSales() float64 {
	var total float64
	for _, row := range ds.Rows {
		total += row.Sales
	}
	return total
}

// TotalProfit returns the grand total of the profit column. Rows with a null
// profit contribute nothing.
func (ds *Dataset) TotalProfit() float64 {
	var total float64
	for _, row := range ds.Rows {
		if row.Profit != nil {
			total += *row.Profit
		}
	}
	return total
}

// Granularity selects the time bucket for time-series aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// MetricResult is a named scalar tagged with the two periods it compares.
type MetricResult struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	CurrentPeriod  string  `json:"current_period,omitempty"`
	PreviousPeriod string  `json:"previous_period,omitempty"`
}

// AggregationRow is one (key, totals) pair of an aggregation result.
type AggregationRow struct {
	Key    string  `json:"key"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit,omitempty"`
	Count  int     `json:"count"`
}

// AggregationResult is an ordered sequence of grouped totals. Ordering is
// operation-specific: chronological for time buckets, descending by total
// for category and top-N groupings.
type AggregationResult struct {
	Dimension string           `json:"dimension"`
	HasProfit bool             `json:"has_profit"`
	Rows      []AggregationRow `json:"rows"`
}

// DatasetSummary describes the currently loaded dataset for callers that
// render period pickers and headline figures.
type DatasetSummary struct {
	RowCount     int            `json:"row_count"`
	DroppedRows  int            `json:"dropped_rows"`
	Encoding     Encoding       `json:"encoding"`
	Delimiter    string         `json:"delimiter"`
	DateFormat   string         `json:"date_format"`
	DateFrom     time.Time      `json:"date_from"`
	DateTo       time.Time      `json:"date_to"`
	TotalSales   float64        `json:"total_sales"`
	TotalProfit  float64        `json:"total_profit"`
	Years        []int          `json:"years"`
	Columns      ColumnMap      `json:"columns"`
	OptionalSeen map[Field]bool `json:"optional_seen"`
	// DistinctValues counts distinct non-blank values per present text
	// column, so callers can size pickers without re-scanning.
	DistinctValues map[Field]int `json:"distinct_values,omitempty"`
}
