package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	noStore       = "no-store"
	maxRecordRows = 10000
)

type APIHandlers struct {
	analytics  *services.Analytics
	logger     *slog.Logger
	tableLimit int
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger, tableLimit int) *APIHandlers {
	return &APIHandlers{
		analytics:  analytics,
		logger:     logger,
		tableLimit: tableLimit,
	}
}

type summaryResponse struct {
	Criteria models.FilterCriteria `json:"criteria"`
	models.Summaries
}

type recordsResponse struct {
	Total int             `json:"total"`
	Rows  []models.Record `json:"rows"`
}

// criteria parses the request filter, writing the error response itself on failure.
func (h *APIHandlers) criteria(w http.ResponseWriter, r *http.Request) (models.FilterCriteria, bool) {
	fq, err := ParseFilterQuery(r.URL.Query())
	if err == nil {
		var c models.FilterCriteria
		if c, err = fq.Criteria(h.analytics.DefaultCriteria()); err == nil {
			return c, true
		}
	}
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
	return models.FilterCriteria{}, false
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Options(), map[string]string{
		"Cache-Control": "public, max-age=300",
	})
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	s := h.analytics.Summarize(r.Context(), "api", c)
	errors.WriteSuccessWithHeaders(w, summaryResponse{Criteria: c, Summaries: s}, map[string]string{
		"Cache-Control": noStore,
	})
}

func (h *APIHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	s := h.analytics.Summarize(r.Context(), "api", c)
	errors.WriteSuccessWithHeaders(w, charts.Build(s), map[string]string{
		"Cache-Control": noStore,
	})
}

// HandleRecords returns the filtered view, truncated to ?limit rows.
func (h *APIHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	limit := h.tableLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecordRows {
			errors.WriteError(w, h.logger,
				errors.BadRequest(fmt.Sprintf("limit must be between 1 and %d", maxRecordRows)),
				observability.GetRequestID(r.Context()))
			return
		}
		limit = n
	}

	view := h.analytics.Filter(c)
	rows := view
	if len(rows) > limit {
		rows = rows[:limit]
	}

	errors.WriteSuccessWithHeaders(w, recordsResponse{Total: len(view), Rows: rows}, map[string]string{
		"Cache-Control": noStore,
	})
}

func (h *APIHandlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", services.CSVFilename, services.CSVContentType, services.WriteCSV)
}

func (h *APIHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", services.XLSXFilename, services.XLSXContentType, services.WriteXLSX)
}

type exportFunc func(w io.Writer, header []string, view []models.Record) error

// export buffers the whole file so a failure can still produce an error response.
func (h *APIHandlers) export(w http.ResponseWriter, r *http.Request, format, filename, contentType string, write exportFunc) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	view := h.analytics.Filter(c)

	var buf bytes.Buffer
	if err := write(&buf, h.analytics.Dataset().Header(), view); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "export failed"), observability.GetRequestID(r.Context()))
		return
	}

	observability.ExportTotal.WithLabelValues(format).Inc()
	observability.RequestLogger(r.Context(), h.logger).Info("filtered data exported",
		"format", format,
		"rows", len(view),
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", noStore)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
