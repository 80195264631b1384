package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"salespulse/internal/analytics"
	apierrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// AnalyticsHandler exposes the metrics and aggregation engines.
type AnalyticsHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the analytics routes.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/metrics", func(r chi.Router) {
		r.Get("/yoy", h.YoYGrowth)
		r.Get("/mom", h.MoMChange)
		r.Get("/margin", h.ProfitMargin)
	})
	r.Route("/aggregations", func(r chi.Router) {
		r.Get("/time", h.ByTime)
		r.Get("/category", h.ByCategory)
		r.Get("/top", h.TopN)
	})

	return r
}

type yoyRequest struct {
	Current  int    `validate:"required"`
	Previous int    `validate:"required"`
	Metric   string `validate:"omitempty,oneof=sales profit"`
}

// YoYGrowth handles GET /metrics/yoy?current=2023&previous=2022&metric=sales
func (h *AnalyticsHandler) YoYGrowth(w http.ResponseWriter, r *http.Request) {
	req := yoyRequest{
		Current:  queryInt(r, "current"),
		Previous: queryInt(r, "previous"),
		Metric:   r.URL.Query().Get("metric"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	metric, _ := analytics.ParseMetric(req.Metric)
	result, err := h.service.YoYGrowth(r.Context(), req.Current, req.Previous, metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

type momRequest struct {
	Year   int    `validate:"required"`
	Month  int    `validate:"required,min=1,max=12"`
	Metric string `validate:"omitempty,oneof=sales profit"`
}

// MoMChange handles GET /metrics/mom?year=2023&month=6&metric=sales
func (h *AnalyticsHandler) MoMChange(w http.ResponseWriter, r *http.Request) {
	req := momRequest{
		Year:   queryInt(r, "year"),
		Month:  queryInt(r, "month"),
		Metric: r.URL.Query().Get("metric"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	metric, _ := analytics.ParseMetric(req.Metric)
	result, err := h.service.MoMChange(r.Context(), req.Year, req.Month, metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// ProfitMargin handles GET /metrics/margin
func (h *AnalyticsHandler) ProfitMargin(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ProfitMargin(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

type timeRequest struct {
	Granularity string `validate:"required,oneof=day month year"`
}

// ByTime handles GET /aggregations/time?granularity=month
func (h *AnalyticsHandler) ByTime(w http.ResponseWriter, r *http.Request) {
	req := timeRequest{Granularity: r.URL.Query().Get("granularity")}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("granularity", "must be one of day, month, year"))
		return
	}

	result, err := h.service.ByTime(r.Context(), domain.Granularity(req.Granularity))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

type categoryRequest struct {
	Field string `validate:"required,oneof=category region"`
}

// ByCategory handles GET /aggregations/category?field=region
func (h *AnalyticsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	req := categoryRequest{Field: r.URL.Query().Get("field")}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("field", "must be one of category, region"))
		return
	}

	result, err := h.service.ByCategory(r.Context(), domain.Field(req.Field))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

type topNRequest struct {
	Field string `validate:"required,oneof=product_name customer_name"`
	N     int    `validate:"required,min=1"`
}

// TopN handles GET /aggregations/top?field=product_name&n=10
func (h *AnalyticsHandler) TopN(w http.ResponseWriter, r *http.Request) {
	req := topNRequest{
		Field: r.URL.Query().Get("field"),
		N:     queryIntDefault(r, "n", 10),
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	result, err := h.service.TopN(r.Context(), domain.Field(req.Field), req.N)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

func queryIntDefault(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
