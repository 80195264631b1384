package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports process liveness and whether a dataset is loaded.
type HealthHandler struct {
	service DatasetServiceInterface
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service DatasetServiceInterface) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now()}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Health)
	return r
}

// Health handles GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": h.service.Ready(),
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
