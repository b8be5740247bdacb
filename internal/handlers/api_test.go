package handlers

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestAnalytics() *services.Analytics {
	records := []models.Record{
		{OrderDate: day(2024, 1, 5), Category: "Chairs", Region: "East", Sales: 100, Profit: 10, OrderID: "O1", Discount: 0.1},
		{OrderDate: day(2024, 1, 6), Category: "Chairs", Region: "West", Sales: 200, Profit: 20, OrderID: "O2", Discount: 0.2, IsWeekend: true},
		{OrderDate: day(2024, 2, 1), Category: "Tables", Region: "East", Sales: 50, Profit: -5, OrderID: "O3", IsHoliday: true},
	}
	return services.NewAnalytics(services.NewDataset(models.RequiredColumns, records), testLogger())
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Error   *errorBody      `json:"error"`
}

func serve(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type summaryBody struct {
	Criteria models.FilterCriteria  `json:"criteria"`
	KPIs     models.KPIs            `json:"kpis"`
	Monthly  []models.MonthlyData   `json:"monthly"`
	Category []models.CategorySales `json:"category"`
	Region   []models.RegionSales   `json:"region"`
	Weekday  []models.WeekdaySales  `json:"weekday"`
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	tests := []struct {
		name       string
		target     string
		wantSales  float64
		wantOrders int
	}{
		{"defaults cover everything", "/api/summary", 350, 3},
		{"single category", "/api/summary?category=Chairs", 300, 2},
		{"date range", "/api/summary?start=2024-01-06&end=2024-01-31", 200, 1},
		{"weekend only", "/api/summary?weekend=true", 200, 1},
		{"holiday only", "/api/summary?holiday=yes", 50, 1},
		{"explicit empty category", "/api/summary?category=", 0, 0},
		{"inverted range", "/api/summary?start=2024-02-01&end=2024-01-01", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, h.HandleSummary, tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, noStore, w.Header().Get("Cache-Control"))

			var body summaryBody
			env := decode(t, w, &body)
			require.True(t, env.Success)
			assert.InDelta(t, tt.wantSales, body.KPIs.TotalSales, 1e-9)
			assert.Equal(t, tt.wantOrders, body.KPIs.DistinctOrders)
			assert.Len(t, body.Weekday, 7)
		})
	}
}

func TestAPIHandlers_HandleSummaryRejectsBadInput(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"bad start date", "/api/summary?start=05/01/2024", "VALIDATION_ERROR"},
		{"bad end date", "/api/summary?end=2024-13-01", "VALIDATION_ERROR"},
		{"bad weekend flag", "/api/summary?weekend=sometimes", "BAD_REQUEST"},
		{"bad holiday flag", "/api/summary?holiday=2", "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, h.HandleSummary, tt.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			env := decode(t, w, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleOptions, "/api/options")
	require.Equal(t, http.StatusOK, w.Code)

	var opts models.FilterOptions
	decode(t, w, &opts)
	assert.Equal(t, "2024-01-05", opts.Start)
	assert.Equal(t, "2024-02-01", opts.End)
	assert.Equal(t, []string{"Chairs", "Tables"}, opts.Categories)
	assert.Equal(t, []string{"East", "West"}, opts.Regions)
}

func TestAPIHandlers_HandleCharts(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleCharts, "/api/charts?region=East")
	require.Equal(t, http.StatusOK, w.Code)

	var specs []struct {
		ID   string      `json:"id"`
		Kind charts.Kind `json:"kind"`
	}
	decode(t, w, &specs)
	require.Len(t, specs, 5)
	assert.Equal(t, charts.IDMonthly, specs[0].ID)
	assert.Equal(t, charts.KindLine, specs[0].Kind)
	assert.Equal(t, charts.KindScatter, specs[3].Kind)
}

func TestAPIHandlers_HandleRecords(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 2)

	t.Run("table limit applies by default", func(t *testing.T) {
		w := serve(t, h.HandleRecords, "/api/records")
		require.Equal(t, http.StatusOK, w.Code)

		var body recordsResponse
		decode(t, w, &body)
		assert.Equal(t, 3, body.Total)
		assert.Len(t, body.Rows, 2)
		assert.Equal(t, "O1", body.Rows[0].OrderID)
	})

	t.Run("explicit limit", func(t *testing.T) {
		w := serve(t, h.HandleRecords, "/api/records?limit=1&category=Tables")
		require.Equal(t, http.StatusOK, w.Code)

		var body recordsResponse
		decode(t, w, &body)
		assert.Equal(t, 1, body.Total)
		require.Len(t, body.Rows, 1)
		assert.Equal(t, "O3", body.Rows[0].OrderID)
	})

	for _, limit := range []string{"0", "-1", "abc", "10001"} {
		t.Run("invalid limit "+limit, func(t *testing.T) {
			w := serve(t, h.HandleRecords, "/api/records?limit="+limit)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAPIHandlers_HandleExportCSV(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleExportCSV, "/api/export.csv?region=East")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.CSVContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="filtered_ai_sales_forecasting_data.csv"`, w.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, services.ExportHeader(models.RequiredColumns), rows[0])
	assert.Equal(t, "2024-01-05", rows[1][0])
	assert.Equal(t, "O3", rows[2][5])
	assert.Equal(t, "Thursday", rows[2][len(rows[2])-1])
}

func TestAPIHandlers_HandleExportCSVEmptyView(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleExportCSV, "/api/export.csv?category=")
	require.Equal(t, http.StatusOK, w.Code)

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestAPIHandlers_HandleExportXLSX(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleExportXLSX, "/api/export.xlsx?weekend=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), services.XLSXFilename)

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Filtered Data")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "O2", rows[1][5])
}

func TestAPIHandlers_HandleHealthAndStats(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger(), 500)

	w := serve(t, h.HandleHealth, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	decode(t, w, &health)
	assert.Equal(t, "healthy", health["status"])

	serve(t, h.HandleSummary, "/api/summary")
	w = serve(t, h.HandleStats, "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	decode(t, w, &stats)
	assert.EqualValues(t, 3, stats["record_count"])
	assert.EqualValues(t, 1, stats["recomputes"])
	assert.Equal(t, "2024-01-05", stats["start_date"])
}
