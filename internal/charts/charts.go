// Package charts turns pipeline summaries into renderer-neutral chart
// specifications: a named dataset plus the fields bound to each visual channel.
package charts

import "sales-dashboard/internal/models"

type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

const (
	IDMonthly  = "monthly-sales"
	IDCategory = "category-sales"
	IDRegion   = "region-sales"
	IDScatter  = "profit-discount"
	IDWeekday  = "weekday-sales"
)

// Encoding binds dataset fields to visual channels. Pie charts use Names and
// Values instead of X and Y.
type Encoding struct {
	X       string   `json:"x,omitempty"`
	Y       string   `json:"y,omitempty"`
	Names   string   `json:"names,omitempty"`
	Values  string   `json:"values,omitempty"`
	Size    string   `json:"size,omitempty"`
	Color   string   `json:"color,omitempty"`
	Hover   []string `json:"hover,omitempty"`
	Markers bool     `json:"markers,omitempty"`
}

type Spec struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	Encoding Encoding `json:"encoding"`
	Data     any      `json:"data"`
}

type ScatterPoint struct {
	Discount float64 `json:"discount"`
	Profit   float64 `json:"profit"`
	Sales    float64 `json:"sales"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
}

// Build returns the five dashboard charts in display order.
func Build(s models.Summaries) []Spec {
	return []Spec{
		{
			ID:       IDMonthly,
			Kind:     KindLine,
			Title:    "Monthly Sales",
			Encoding: Encoding{X: "month", Y: "sales", Markers: true},
			Data:     s.Monthly,
		},
		{
			ID:       IDCategory,
			Kind:     KindBar,
			Title:    "Sales by Category",
			Encoding: Encoding{X: "category", Y: "sales", Color: "category"},
			Data:     s.Category,
		},
		{
			ID:       IDRegion,
			Kind:     KindPie,
			Title:    "Sales Distribution by Region",
			Encoding: Encoding{Names: "region", Values: "sales"},
			Data:     s.Region,
		},
		{
			ID:    IDScatter,
			Kind:  KindScatter,
			Title: "Profit vs Discount",
			Encoding: Encoding{
				X:     "discount",
				Y:     "profit",
				Size:  "sales",
				Color: "category",
				Hover: []string{"region"},
			},
			Data: ScatterPoints(s.View),
		},
		{
			ID:       IDWeekday,
			Kind:     KindBar,
			Title:    "Sales by Weekday",
			Encoding: Encoding{X: "weekday", Y: "sales", Color: "weekday"},
			Data:     s.Weekday,
		},
	}
}

func ScatterPoints(view []models.Record) []ScatterPoint {
	points := make([]ScatterPoint, len(view))
	for i, r := range view {
		points[i] = ScatterPoint{
			Discount: r.Discount,
			Profit:   r.Profit,
			Sales:    r.Sales,
			Category: r.Category,
			Region:   r.Region,
		}
	}
	return points
}
