package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salespulse/internal/errors"
)

// DatasetHandler handles dataset upload and summary requests.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/summary", h.Summary)

	return r
}

// Upload consumes an upload (multipart "file" part or raw body), rebuilds
// the canonical table and responds with the new dataset summary.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	raw, filename, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Upload(r.Context(), raw, filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload accepted",
		slog.String("filename", filename),
		slog.Int("rows", summary.RowCount),
		slog.Int("dropped", summary.DroppedRows))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// Summary responds with the summary of the currently loaded dataset.
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

func (h *DatasetHandler) readUpload(r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", "multipart upload requires a \"file\" part")
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, "", apierrors.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds the maximum allowed size")
		}
		return raw, header.Filename, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", apierrors.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds the maximum allowed size")
	}
	if len(raw) == 0 {
		return nil, "", apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", "upload body is empty")
	}
	return raw, r.URL.Query().Get("filename"), nil
}
