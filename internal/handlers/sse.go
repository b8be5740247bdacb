package handlers

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics  *services.Analytics
	logger     *slog.Logger
	tableLimit int
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, tableLimit int) *SSEHandlers {
	return &SSEHandlers{
		analytics:  analytics,
		logger:     logger,
		tableLimit: tableLimit,
	}
}

// HandleDashboard recomputes every summary for the filter signals sent by the
// page and patches the KPI cards, the data table and the local charts signal.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	logger := observability.RequestLogger(r.Context(), h.logger)

	var signals templates.FilterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid signals"), requestID)
		return
	}

	criteria, err := FilterQueryFromSignals(signals).Criteria(h.analytics.DefaultCriteria())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	s := h.analytics.Summarize(r.Context(), "sse", criteria)

	kpiHTML, err := templates.RenderString(r.Context(), templates.KPICards(s.KPIs))
	if err != nil {
		logger.Error("render kpi cards", "error", err)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "render failed"), requestID)
		return
	}

	table := templates.NewTable(h.analytics.Dataset().Header(), s.View, h.tableLimit)
	tableHTML, err := templates.RenderString(r.Context(), templates.DataTable(table))
	if err != nil {
		logger.Error("render data table", "error", err)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "render failed"), requestID)
		return
	}

	chartSignals, err := templates.ChartSignals(charts.Build(s))
	if err != nil {
		logger.Error("marshal chart signals", "error", err)
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "encode failed"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	if err := sse.PatchElements(kpiHTML); err != nil {
		logger.Warn("patch kpi elements", "error", err)
		return
	}
	if err := sse.PatchElements(tableHTML); err != nil {
		logger.Warn("patch table elements", "error", err)
		return
	}
	if err := sse.PatchSignals(chartSignals); err != nil {
		logger.Warn("patch chart signals", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
