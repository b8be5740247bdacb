package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

var signalsAttr = regexp.MustCompile(`data-signals="([^"]*)"`)

func sseRequest(t *testing.T, signals any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(signals)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodGet, "/sse/dashboard?datastar="+url.QueryEscape(string(raw)), nil)
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger(), 500)

	req := sseRequest(t, templates.FilterSignals{
		Start:      "2024-01-01",
		End:        "2024-12-31",
		Categories: []string{"Chairs"},
		Regions:    []string{"East", "West"},
	})
	w := httptest.NewRecorder()

	h.HandleDashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `id="kpis"`)
	assert.Contains(t, body, `id="data-table"`)
	assert.Contains(t, body, "₹300")
	assert.Contains(t, body, "Showing 2 of 2 rows")
	assert.Contains(t, body, "signals {\"_charts\":")
	assert.Contains(t, body, "monthly-sales")
	assert.NotContains(t, body, "O3")
}

func TestSSEHandlers_HandleDashboardEmptySelection(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger(), 500)

	req := sseRequest(t, templates.FilterSignals{Categories: []string{}})
	w := httptest.NewRecorder()

	h.HandleDashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "₹0")
	assert.Contains(t, body, "Showing 0 of 0 rows")
}

func TestSSEHandlers_HandleDashboardMissingSignalsUseDefaults(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger(), 500)

	req := sseRequest(t, map[string]any{"weekend": true})
	w := httptest.NewRecorder()

	h.HandleDashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "₹200")
	assert.Contains(t, body, "Showing 1 of 1 rows")
}

func TestSSEHandlers_HandleDashboardRejectsBadSignals(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger(), 500)

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sse/dashboard?datastar="+url.QueryEscape("{not json"), nil)
		w := httptest.NewRecorder()
		h.HandleDashboard(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid date", func(t *testing.T) {
		req := sseRequest(t, templates.FilterSignals{Start: "yesterday"})
		w := httptest.NewRecorder()
		h.HandleDashboard(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func largeAnalytics(n int) *services.Analytics {
	categories := []string{"Chairs", "Tables", "Phones", "Binders"}
	regions := []string{"East", "West", "Central", "South"}

	records := make([]models.Record, n)
	for i := range records {
		date := day(2023, 1, 1).AddDate(0, 0, i%730)
		wd := date.Weekday()
		records[i] = models.Record{
			OrderDate: date,
			Category:  categories[i%len(categories)],
			Region:    regions[(i/len(categories))%len(regions)],
			Sales:     float64(100 + i%900),
			Profit:    float64(i%120 - 20),
			OrderID:   fmt.Sprintf("ORD-%06d", i),
			Discount:  float64(i%5) / 10,
			IsWeekend: wd == 0 || wd == 6,
		}
	}
	return services.NewAnalytics(services.NewDataset(models.RequiredColumns, records), testLogger())
}

// The browser sends every non-underscore signal back on @get, so the page's
// store must stay small even when the chart payload is large.
func TestDashboardSignalsRoundTrip(t *testing.T) {
	analytics := largeAnalytics(10000)

	page := serve(t, NewPageHandlers(analytics, testLogger(), 500).HandleDashboard, "/")
	require.Equal(t, http.StatusOK, page.Code)

	m := signalsAttr.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2)

	var store map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(html.UnescapeString(m[1])), &store))
	require.Contains(t, store, templates.ChartsSignal)
	assert.NotContains(t, store, "charts")
	assert.Greater(t, len(store[templates.ChartsSignal]), 64*1024)

	sent := make(map[string]json.RawMessage, len(store))
	for k, v := range store {
		if !strings.HasPrefix(k, "_") {
			sent[k] = v
		}
	}
	raw, err := json.Marshal(sent)
	require.NoError(t, err)

	target := "/sse/dashboard?datastar=" + url.QueryEscape(string(raw))
	assert.Less(t, len(target), 4096)

	w := httptest.NewRecorder()
	NewSSEHandlers(analytics, testLogger(), 500).HandleDashboard(w, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Showing 500 of 10000 rows")
	assert.Contains(t, body, templates.ChartsSignal)
}
