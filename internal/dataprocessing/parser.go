package dataprocessing

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// ParserConfig holds configuration options for the Parser.
type ParserConfig struct {
	SampleLines int // lines sampled during delimiter detection
}

// DefaultParserConfig returns the configuration used when the caller has no
// opinion.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{SampleLines: DefaultSampleLines}
}

// Parser orchestrates the ingestion pipeline: format detection, CSV reading,
// header normalization, column validation and canonical table construction.
type Parser struct {
	logger *slog.Logger
	config ParserConfig
}

// NewParser creates a new ingestion parser.
func NewParser(logger *slog.Logger, config ParserConfig) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SampleLines <= 0 {
		config.SampleLines = DefaultSampleLines
	}
	return &Parser{logger: logger, config: config}
}

// Parse consumes an upload once and produces the canonical table plus the
// number of rows dropped during coercion. The filename is only a hint: a
// .xlsx suffix routes the bytes through the workbook reader, everything else
// goes through encoding/delimiter detection.
func (p *Parser) Parse(ctx context.Context, raw []byte, filename string) (*domain.Dataset, int, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return p.parseWorkbook(ctx, raw)
	}
	return p.parseCSV(ctx, raw)
}

// parseCSV walks the encoding candidates in trial order. A candidate is only
// accepted once the decoded header passes schema validation; after that the
// pipeline commits to it and any later failure is final rather than a reason
// to try the next encoding.
func (p *Parser) parseCSV(ctx context.Context, raw []byte) (*domain.Dataset, int, error) {
	candidates, err := DecodeCandidates(raw)
	if err != nil {
		return nil, 0, err
	}

	var lastErr error
	for _, candidate := range candidates {
		delimiter, err := DetectDelimiter(candidate.Text, p.config.SampleLines)
		if err != nil {
			lastErr = err
			continue
		}

		records, err := readRecords(candidate.Text, delimiter)
		if err != nil {
			lastErr = apperrors.NewParsingError("failed to read delimited records", err)
			continue
		}
		if len(records) == 0 {
			lastErr = apperrors.NewFormatDetectionError("upload contains no records", nil)
			continue
		}

		cm := NormalizeHeader(records[0])
		if err := RequireColumns(cm); err != nil {
			lastErr = err
			continue
		}

		p.logger.InfoContext(ctx, "upload format detected",
			slog.String("encoding", string(candidate.Encoding)),
			slog.String("delimiter", domain.DetectedFormat{Delimiter: delimiter}.DelimiterName()),
			slog.Int("records", len(records)))

		format := domain.DetectedFormat{Encoding: candidate.Encoding, Delimiter: delimiter}
		return p.buildFromRecords(ctx, records[1:], cm, format)
	}

	if lastErr == nil {
		lastErr = apperrors.NewFormatDetectionError("no encoding candidate decoded the upload", nil)
	}
	return nil, 0, lastErr
}

func (p *Parser) parseWorkbook(ctx context.Context, raw []byte) (*domain.Dataset, int, error) {
	records, err := ReadWorkbook(raw)
	if err != nil {
		return nil, 0, err
	}

	cm := NormalizeHeader(records[0])
	if err := RequireColumns(cm); err != nil {
		return nil, 0, err
	}

	p.logger.InfoContext(ctx, "workbook upload accepted",
		slog.Int("records", len(records)))

	format := domain.DetectedFormat{Encoding: domain.EncodingUTF8}
	return p.buildFromRecords(ctx, records[1:], cm, format)
}

// buildFromRecords runs column validation and table construction over the
// data rows of a committed candidate.
func (p *Parser) buildFromRecords(ctx context.Context, rows [][]string, cm domain.ColumnMap, format domain.DetectedFormat) (*domain.Dataset, int, error) {
	salesValues := columnValues(rows, cm.Index(domain.FieldSales))
	if result := ValidateSales(salesValues); !result.IsValid {
		return nil, 0, apperrors.NewColumnValidationError(domain.FieldSales, result.Reason)
	}

	dateValues := columnValues(rows, cm.Index(domain.FieldOrderDate))
	result, lockedFormat := ValidateDates(dateValues)
	if !result.IsValid {
		return nil, 0, apperrors.NewColumnValidationError(domain.FieldOrderDate, result.Reason)
	}

	dataset, dropped, err := BuildTable(rows, cm, lockedFormat)
	if err != nil {
		return nil, dropped, err
	}
	dataset.Format = format

	if dropped > 0 {
		p.logger.WarnContext(ctx, "rows dropped during coercion",
			slog.Int("dropped", dropped),
			slog.Int("kept", dataset.Len()))
	}
	p.logger.InfoContext(ctx, "canonical table built",
		slog.Int("rows", dataset.Len()),
		slog.String("date_format", lockedFormat),
		slog.String("fingerprint", dataset.Fingerprint[:12]))

	return dataset, dropped, nil
}

func readRecords(text string, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func columnValues(rows [][]string, idx int) []string {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = cellAt(row, idx)
	}
	return values
}
