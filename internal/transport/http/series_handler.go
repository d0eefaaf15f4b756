package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "econviz/internal/errors"
	"econviz/internal/validation"
)

// seriesPath is the validated {id} URL parameter
type seriesPath struct {
	ID string `json:"id" validate:"required,series_id"`
}

// SeriesHandler serves the series catalog used to build drill-down menus
type SeriesHandler struct {
	service      SeriesServiceInterface
	validator    *validation.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(service SeriesServiceInterface, validator *validation.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SeriesHandler {
	return &SeriesHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "series_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the series routes
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListSeries)
	r.Get("/summary", h.GetSummary)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SeriesCtx)
		r.Get("/", h.GetSeries)
		r.Get("/children", h.GetChildren)
	})

	return r
}

// SeriesCtx rejects malformed series ids before they reach the service
func (h *SeriesHandler) SeriesCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.validator.ValidateStruct(seriesPath{ID: chi.URLParam(r, "id")}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListSeries handles GET /api/series?type=CPI
func (h *SeriesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"series": catalog,
		"count":  len(catalog),
	})
}

// GetSummary handles GET /api/series/summary
func (h *SeriesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, summary)
}

// GetSeries handles GET /api/series/{id}
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Series(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, info)
}

// GetChildren handles GET /api/series/{id}/children
func (h *SeriesHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	children, err := h.service.Children(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"parent":   id,
		"children": children,
		"count":    len(children),
	})
}
