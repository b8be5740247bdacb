package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// Analytics serves summaries over one immutable dataset. It holds no mutable
// state besides counters, so it is safe for concurrent requests.
type Analytics struct {
	dataset    *Dataset
	logger     *slog.Logger
	recomputes atomic.Int64
}

func NewAnalytics(dataset *Dataset, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	observability.DatasetRows.Set(float64(dataset.Len()))
	return &Analytics{
		dataset: dataset,
		logger:  logger,
	}
}

func (a *Analytics) Dataset() *Dataset {
	return a.dataset
}

func (a *Analytics) DefaultCriteria() models.FilterCriteria {
	return a.dataset.DefaultCriteria()
}

func (a *Analytics) Options() models.FilterOptions {
	return a.dataset.Options()
}

// Summarize re-scans the full dataset for c. source labels the caller in
// metrics ("api", "sse", "page").
func (a *Analytics) Summarize(ctx context.Context, source string, c models.FilterCriteria) models.Summaries {
	ctx, span := observability.StartSpan(ctx, "analytics.summarize",
		attribute.String("source", source),
		attribute.Int("dataset.rows", a.dataset.Len()),
	)
	defer span.End()

	start := time.Now()
	summaries := ComputeSummaries(a.dataset.Records(), c)
	duration := time.Since(start)

	a.recomputes.Add(1)
	observability.RecomputeTotal.WithLabelValues(source).Inc()
	observability.RecomputeDuration.Observe(duration.Seconds())
	observability.FilteredRows.Observe(float64(len(summaries.View)))
	span.SetAttributes(attribute.Int("view.rows", len(summaries.View)))

	observability.RequestLogger(ctx, a.logger).Debug("summaries computed",
		"source", source,
		"rows", len(summaries.View),
		"duration", duration,
	)

	return summaries
}

// Filter returns only the filtered view, for table and export callers.
func (a *Analytics) Filter(c models.FilterCriteria) []models.Record {
	return Apply(a.dataset.Records(), c)
}

// Stats is served on the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	start, end := a.dataset.DateSpan()
	return map[string]any{
		"record_count": a.dataset.Len(),
		"categories":   len(a.dataset.Categories()),
		"regions":      len(a.dataset.Regions()),
		"start_date":   start.Format(dateLayout),
		"end_date":     end.Format(dateLayout),
		"loaded_at":    a.dataset.LoadedAt(),
		"recomputes":   a.recomputes.Load(),
	}
}
