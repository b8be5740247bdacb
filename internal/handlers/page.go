package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	analytics  *services.Analytics
	logger     *slog.Logger
	tableLimit int
}

func NewPageHandlers(analytics *services.Analytics, logger *slog.Logger, tableLimit int) *PageHandlers {
	return &PageHandlers{
		analytics:  analytics,
		logger:     logger,
		tableLimit: tableLimit,
	}
}

// HandleDashboard renders the page for the default criteria: the full date
// span and every category and region.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	s := h.analytics.Summarize(ctx, "page", h.analytics.DefaultCriteria())
	page := templates.Page{
		Options:    h.analytics.Options(),
		Header:     h.analytics.Dataset().Header(),
		Summaries:  s,
		Charts:     charts.Build(s),
		TableLimit: h.tableLimit,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", noStore)
	if err := templates.Dashboard(page).Render(ctx, w); err != nil {
		observability.RequestLogger(ctx, h.logger).Error("render dashboard", "error", err)
	}
}

// Unavailable serves the fatal load error on every route so no partial
// dashboard is ever shown.
type Unavailable struct {
	err    *errors.AppError
	logger *slog.Logger
}

func NewUnavailable(loadErr error, logger *slog.Logger) *Unavailable {
	appErr, ok := errors.As(loadErr)
	if !ok {
		appErr = errors.Wrap(loadErr, errors.CodeServiceUnavail, "Dataset could not be loaded")
	}
	return &Unavailable{err: appErr, logger: logger}
}

func (u *Unavailable) HandlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", noStore)
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := templates.LoadError(u.err.Message, u.err.Fields).Render(r.Context(), w); err != nil {
		u.logger.Error("render load error", "error", err)
	}
}

func (u *Unavailable) HandleAPI(w http.ResponseWriter, r *http.Request) {
	errors.WriteError(w, u.logger, u.err, observability.GetRequestID(r.Context()))
}
