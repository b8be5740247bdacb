package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.943 generate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/a-h/templ"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	KPIElementID   = "kpis"
	TableElementID = "data-table"

	// ChartsSignal starts with an underscore so Datastar keeps it in the
	// browser and never sends the chart payload back with filter requests.
	ChartsSignal = "_charts"
)

// FilterSignals mirrors the Datastar signal store the page binds its filter
// controls to.
type FilterSignals struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Weekend    bool     `json:"weekend"`
	Holiday    bool     `json:"holiday"`
}

// Page is everything the dashboard shell needs for its first render.
type Page struct {
	Options    models.FilterOptions
	Header     []string
	Summaries  models.Summaries
	Charts     []charts.Spec
	TableLimit int
}

// Table is the visible slice of a filtered view, laid out like the export.
type Table struct {
	Columns []string
	Rows    [][]string
	Total   int
}

// NewTable renders at most limit rows of view using the dataset header plus
// the derived Weekday column.
func NewTable(header []string, view []models.Record, limit int) Table {
	if len(header) == 0 {
		header = models.RequiredColumns
	}

	shown := view
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	t := Table{
		Columns: services.ExportHeader(header),
		Rows:    make([][]string, len(shown)),
		Total:   len(view),
	}
	for i, r := range shown {
		t.Rows[i] = services.ExportRow(header, t.Columns, r)
	}
	return t
}

type kpiCard struct {
	Label string
	Value string
}

func kpiCards(k models.KPIs) []kpiCard {
	return []kpiCard{
		{"Total Sales", FormatCurrency(k.TotalSales)},
		{"Total Profit", FormatCurrency(k.TotalProfit)},
		{"Total Orders", FormatCount(k.DistinctOrders)},
		{"Avg Discount", FormatPercent(k.AvgDiscount)},
	}
}

type pageStore struct {
	FilterSignals
	Charts []charts.Spec `json:"_charts"`
}

func pageSignals(p Page) pageStore {
	return pageStore{
		FilterSignals: FilterSignals{
			Start:      p.Options.Start,
			End:        p.Options.End,
			Categories: nonNil(p.Options.Categories),
			Regions:    nonNil(p.Options.Regions),
		},
		Charts: p.Charts,
	}
}

// ChartSignals is the PatchSignals payload that replaces the page's charts.
func ChartSignals(specs []charts.Spec) ([]byte, error) {
	return json.Marshal(map[string][]charts.Spec{ChartsSignal: specs})
}

func chartElementID(id string) string {
	return "chart-" + id
}

// RenderString is used by the SSE handlers, which patch HTML fragments.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
