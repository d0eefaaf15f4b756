package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "econviz/internal/errors"
	"econviz/internal/exporter"
	"econviz/internal/services"
	"econviz/internal/validation"
	api "econviz/pkg/contracts/api/v1"
	"econviz/pkg/contracts/domain"
)

// ChartHandler serves chart data and chart exports with RFC 7807 errors
type ChartHandler struct {
	service      ChartServiceInterface
	validator    *validation.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	defaults     api.ChartRequest
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service ChartServiceInterface, validator *validation.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
		defaults:     api.DefaultChartRequest(),
	}
}

// WithDefaultYears overrides the year window used when a request omits it
func (h *ChartHandler) WithDefaultYears(start, end int) *ChartHandler {
	if start > 0 && end >= start {
		h.defaults.StartYear = start
		h.defaults.EndYear = end
	}
	return h
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetChart)
	r.Get("/export", h.ExportChart)

	return r
}

// parseParams builds validated filter parameters from the query string.
// Absent parameters take the chart form defaults.
func (h *ChartHandler) parseParams(r *http.Request) (domain.FilterParams, error) {
	req, err := api.ParseChartRequest(r.URL.Query(), h.defaults)
	if err != nil {
		return domain.FilterParams{}, apierrors.InvalidRequestWithError(err)
	}
	if err := h.validator.ValidateChartRequest(req); err != nil {
		return domain.FilterParams{}, err
	}
	return req.ToFilterParams(), nil
}

// GetChart handles GET /api/chart
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.service.Chart(r.Context(), params)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, data)
}

// ExportChart handles GET /api/chart/export?format=csv|xlsx|json
func (h *ChartHandler) ExportChart(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	formatParam := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(api.ParamFormat)))
	if formatParam == "" {
		formatParam = string(exporter.FormatCSV)
	}
	if err := h.validator.ValidateExportRequest(api.ExportRequest{Format: formatParam}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(formatParam)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(api.ParamFormat, err.Error()))
		return
	}

	result, err := h.service.Export(r.Context(), params, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "chart exported",
		slog.String("format", string(result.Format)),
		slog.String("file_name", result.FileName),
		slog.Int("rows", result.Rows))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export body", slog.String("error", err.Error()))
	}
}

// mapServiceError turns service sentinels into API errors; pipeline and
// API errors pass through for the error handler to classify.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoTableLoaded):
		return apierrors.NewWithDetails(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"No observation table is loaded", err.Error())
	case errors.Is(err, services.ErrUnknownSeriesType):
		return apierrors.ErrValidation("type", err.Error())
	default:
		return err
	}
}
