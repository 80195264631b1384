package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/analytics"
	apierrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// stubService implements DatasetServiceInterface with overridable behavior
// per test.
type stubService struct {
	uploadFn       func(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error)
	summaryFn      func(ctx context.Context) (domain.DatasetSummary, error)
	ready          bool
	yoyFn          func(ctx context.Context, currentYear, previousYear int, metric analytics.Metric) (domain.MetricResult, error)
	momFn          func(ctx context.Context, year, month int, metric analytics.Metric) (domain.MetricResult, error)
	profitMarginFn func(ctx context.Context) (domain.MetricResult, error)
	byTimeFn       func(ctx context.Context, granularity domain.Granularity) (domain.AggregationResult, error)
	byCategoryFn   func(ctx context.Context, field domain.Field) (domain.AggregationResult, error)
	topNFn         func(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error)
}

func (s *stubService) Upload(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error) {
	return s.uploadFn(ctx, raw, filename)
}

func (s *stubService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	return s.summaryFn(ctx)
}

func (s *stubService) Ready() bool { return s.ready }

func (s *stubService) YoYGrowth(ctx context.Context, currentYear, previousYear int, metric analytics.Metric) (domain.MetricResult, error) {
	return s.yoyFn(ctx, currentYear, previousYear, metric)
}

func (s *stubService) MoMChange(ctx context.Context, year, month int, metric analytics.Metric) (domain.MetricResult, error) {
	return s.momFn(ctx, year, month, metric)
}

func (s *stubService) ProfitMargin(ctx context.Context) (domain.MetricResult, error) {
	return s.profitMarginFn(ctx)
}

func (s *stubService) ByTime(ctx context.Context, granularity domain.Granularity) (domain.AggregationResult, error) {
	return s.byTimeFn(ctx, granularity)
}

func (s *stubService) ByCategory(ctx context.Context, field domain.Field) (domain.AggregationResult, error) {
	return s.byCategoryFn(ctx, field)
}

func (s *stubService) TopN(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error) {
	return s.topNFn(ctx, field, n)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func newDatasetRouter(service *stubService) chi.Router {
	logger := testLogger()
	h := NewDatasetHandler(service, logger, apierrors.NewErrorHandler(logger), 1<<20)
	return h.Routes()
}

func newAnalyticsRouter(service *stubService) chi.Router {
	logger := testLogger()
	h := NewAnalyticsHandler(service, logger, apierrors.NewErrorHandler(logger))
	return h.Routes()
}

func TestDatasetUploadRawBody(t *testing.T) {
	service := &stubService{
		uploadFn: func(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error) {
			assert.Equal(t, "date,sales\n2023-01-01,100\n", string(raw))
			assert.Equal(t, "sales.csv", filename)
			return domain.DatasetSummary{RowCount: 1}, nil
		},
	}
	router := newDatasetRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/?filename=sales.csv",
		bytes.NewBufferString("date,sales\n2023-01-01,100\n"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var summary domain.DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.RowCount)
}

func TestDatasetUploadMultipart(t *testing.T) {
	service := &stubService{
		uploadFn: func(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error) {
			assert.Equal(t, "upload.csv", filename)
			return domain.DatasetSummary{RowCount: 2}, nil
		},
	}
	router := newDatasetRouter(service)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("date,sales\n2023-01-01,100\n2023-01-02,200\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDatasetUploadEmptyBody(t *testing.T) {
	service := &stubService{}
	router := newDatasetRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBuffer(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetUploadValidationFailure(t *testing.T) {
	service := &stubService{
		uploadFn: func(ctx context.Context, raw []byte, filename string) (domain.DatasetSummary, error) {
			return domain.DatasetSummary{}, apierrors.NewColumnValidationError(
				domain.FieldSales, `Sales column contains non-numeric value "abc" at row 2`)
		},
	}
	router := newDatasetRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("junk"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "COLUMN_VALIDATION", resp.Error.ErrorCode)
	assert.Contains(t, resp.Error.Message, "row 2")
}

func TestDatasetSummaryNoDataset(t *testing.T) {
	service := &stubService{
		summaryFn: func(ctx context.Context) (domain.DatasetSummary, error) {
			return domain.DatasetSummary{}, apierrors.NewNoDatasetError()
		},
	}
	router := newDatasetRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_DATASET", resp.Error.ErrorCode)
}

func TestYoYGrowthEndpoint(t *testing.T) {
	service := &stubService{
		yoyFn: func(ctx context.Context, currentYear, previousYear int, metric analytics.Metric) (domain.MetricResult, error) {
			assert.Equal(t, 2023, currentYear)
			assert.Equal(t, 2022, previousYear)
			assert.Equal(t, analytics.MetricSales, metric)
			return domain.MetricResult{Name: "yoy_growth_pct", Value: 50}, nil
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/metrics/yoy?current=2023&previous=2022", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.MetricResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 50.0, result.Value)
}

func TestYoYGrowthMissingParams(t *testing.T) {
	router := newAnalyticsRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics/yoy?current=2023", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoMChangeEndpoint(t *testing.T) {
	service := &stubService{
		momFn: func(ctx context.Context, year, month int, metric analytics.Metric) (domain.MetricResult, error) {
			assert.Equal(t, 2023, year)
			assert.Equal(t, 1, month)
			return domain.MetricResult{Name: "mom_change_pct", Value: 20}, nil
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/metrics/mom?year=2023&month=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMoMChangeRejectsBadMonth(t *testing.T) {
	router := newAnalyticsRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics/mom?year=2023&month=13", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestByTimeEndpoint(t *testing.T) {
	service := &stubService{
		byTimeFn: func(ctx context.Context, granularity domain.Granularity) (domain.AggregationResult, error) {
			assert.Equal(t, domain.GranularityMonth, granularity)
			return domain.AggregationResult{
				Dimension: "time_month",
				Rows:      []domain.AggregationRow{{Key: "2023-01", Sales: 100, Count: 1}},
			}, nil
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/aggregations/time?granularity=month", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.AggregationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2023-01", result.Rows[0].Key)
}

func TestByTimeRejectsUnknownGranularity(t *testing.T) {
	router := newAnalyticsRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/aggregations/time?granularity=week", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopNEndpoint(t *testing.T) {
	service := &stubService{
		topNFn: func(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error) {
			assert.Equal(t, domain.FieldProductName, field)
			assert.Equal(t, 10, n) // default when n is omitted
			return domain.AggregationResult{Dimension: "product_name"}, nil
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/aggregations/top?field=product_name", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTopNAbsentColumn(t *testing.T) {
	service := &stubService{
		topNFn: func(ctx context.Context, field domain.Field, n int) (domain.AggregationResult, error) {
			return domain.AggregationResult{}, apierrors.NewInvalidFieldError(field)
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/aggregations/top?field=customer_name&n=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_FIELD", resp.Error.ErrorCode)
}

func TestByCategoryEndpoint(t *testing.T) {
	service := &stubService{
		byCategoryFn: func(ctx context.Context, field domain.Field) (domain.AggregationResult, error) {
			assert.Equal(t, domain.FieldRegion, field)
			return domain.AggregationResult{Dimension: "region"}, nil
		},
	}
	router := newAnalyticsRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/aggregations/category?field=region", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := NewHealthHandler(&stubService{ready: true}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["dataset_loaded"])
}
