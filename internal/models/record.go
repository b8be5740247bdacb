package models

import "time"

// Column names the dataset header must carry.
const (
	ColOrderDate = "Order Date"
	ColCategory  = "Category"
	ColRegion    = "Region"
	ColSales     = "Sales"
	ColProfit    = "Profit"
	ColOrderID   = "Order ID"
	ColDiscount  = "Discount"
	ColIsWeekend = "IsWeekend"
	ColIsHoliday = "IsHoliday"
)

var RequiredColumns = []string{
	ColOrderDate,
	ColCategory,
	ColRegion,
	ColSales,
	ColProfit,
	ColOrderID,
	ColDiscount,
	ColIsWeekend,
	ColIsHoliday,
}

// Record is one row of the sales dataset. Fields holds the raw cells in
// header order so the row can be written back out unchanged.
type Record struct {
	OrderDate time.Time `json:"order_date"`
	Category  string    `json:"category"`
	Region    string    `json:"region"`
	Sales     float64   `json:"sales"`
	Profit    float64   `json:"profit"`
	OrderID   string    `json:"order_id"`
	Discount  float64   `json:"discount"`
	IsWeekend bool      `json:"is_weekend"`
	IsHoliday bool      `json:"is_holiday"`
	Fields    []string  `json:"-"`
}

func (r Record) Weekday() string {
	return r.OrderDate.Weekday().String()
}

// FilterCriteria narrows the dataset. Start and End are inclusive calendar
// dates. A nil Categories or Regions set means "not yet chosen" only at the
// HTTP boundary; inside the pipeline an empty set always matches nothing.
type FilterCriteria struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Categories  []string  `json:"categories"`
	Regions     []string  `json:"regions"`
	WeekendOnly bool      `json:"weekend_only"`
	HolidayOnly bool      `json:"holiday_only"`
}

type KPIs struct {
	TotalSales     float64 `json:"total_sales"`
	TotalProfit    float64 `json:"total_profit"`
	DistinctOrders int     `json:"distinct_orders"`
	AvgDiscount    float64 `json:"avg_discount"`
	RowCount       int     `json:"row_count"`
}

type MonthlyData struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
	Share  float64 `json:"share"`
}

type WeekdaySales struct {
	Weekday string  `json:"weekday"`
	Sales   float64 `json:"sales"`
}

// Summaries is everything derived from one filtered view.
type Summaries struct {
	View     []Record        `json:"-"`
	KPIs     KPIs            `json:"kpis"`
	Monthly  []MonthlyData   `json:"monthly"`
	Category []CategorySales `json:"category"`
	Region   []RegionSales   `json:"region"`
	Weekday  []WeekdaySales  `json:"weekday"`
}

// FilterOptions describes the choices offered to the user and their defaults.
type FilterOptions struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
}
