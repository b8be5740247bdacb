package services

import (
	"cmp"
	"slices"
	"time"

	"sales-dashboard/internal/models"
)

// Weekdays is the fixed Monday-first order of the weekday series.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Matches reports whether r satisfies every clause of c.
func Matches(r models.Record, c models.FilterCriteria) bool {
	return !r.OrderDate.Before(c.Start) &&
		!r.OrderDate.After(c.End) &&
		slices.Contains(c.Categories, r.Category) &&
		slices.Contains(c.Regions, r.Region) &&
		(!c.WeekendOnly || r.IsWeekend) &&
		(!c.HolidayOnly || r.IsHoliday)
}

// Apply returns the records matching c, in dataset order. The input is never
// modified.
func Apply(records []models.Record, c models.FilterCriteria) []models.Record {
	if c.Start.After(c.End) || len(c.Categories) == 0 || len(c.Regions) == 0 {
		return []models.Record{}
	}

	view := make([]models.Record, 0, len(records)/4)
	for _, r := range records {
		if Matches(r, c) {
			view = append(view, r)
		}
	}
	return view
}

// ComputeSummaries filters records and derives every summary from the view.
func ComputeSummaries(records []models.Record, c models.FilterCriteria) models.Summaries {
	view := Apply(records, c)
	return models.Summaries{
		View:     view,
		KPIs:     ComputeKPIs(view),
		Monthly:  MonthlySeries(view),
		Category: CategorySeries(view),
		Region:   RegionSeries(view),
		Weekday:  WeekdaySeries(view),
	}
}

// ComputeKPIs sums sales and profit, counts distinct orders and averages the
// discount. The average of an empty view is 0.
func ComputeKPIs(view []models.Record) models.KPIs {
	k := models.KPIs{RowCount: len(view)}
	orders := make(map[string]struct{}, len(view))
	var discount float64

	for _, r := range view {
		k.TotalSales += r.Sales
		k.TotalProfit += r.Profit
		discount += r.Discount
		orders[r.OrderID] = struct{}{}
	}

	k.DistinctOrders = len(orders)
	if len(view) > 0 {
		k.AvgDiscount = discount / float64(len(view))
	}
	return k
}

// MonthlySeries sums sales per calendar month in chronological order. Months
// without records are omitted.
func MonthlySeries(view []models.Record) []models.MonthlyData {
	groups := make(map[string]float64)
	for _, r := range view {
		groups[r.OrderDate.Format("2006-01")] += r.Sales
	}

	result := make([]models.MonthlyData, 0, len(groups))
	for month, sales := range groups {
		result = append(result, models.MonthlyData{Month: month, Sales: sales})
	}
	slices.SortFunc(result, func(a, b models.MonthlyData) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return result
}

// CategorySeries sums sales per category, largest first.
func CategorySeries(view []models.Record) []models.CategorySales {
	groups := make(map[string]float64)
	for _, r := range view {
		groups[r.Category] += r.Sales
	}

	result := make([]models.CategorySales, 0, len(groups))
	for category, sales := range groups {
		result = append(result, models.CategorySales{Category: category, Sales: sales})
	}
	slices.SortFunc(result, func(a, b models.CategorySales) int {
		if c := cmp.Compare(b.Sales, a.Sales); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return result
}

// RegionSeries sums sales per region with each region's share of the total.
func RegionSeries(view []models.Record) []models.RegionSales {
	groups := make(map[string]float64)
	var total float64
	for _, r := range view {
		groups[r.Region] += r.Sales
		total += r.Sales
	}

	result := make([]models.RegionSales, 0, len(groups))
	for region, sales := range groups {
		rs := models.RegionSales{Region: region, Sales: sales}
		if total != 0 {
			rs.Share = sales / total
		}
		result = append(result, rs)
	}
	slices.SortFunc(result, func(a, b models.RegionSales) int {
		return cmp.Compare(a.Region, b.Region)
	})
	return result
}

// WeekdaySeries always has seven entries, Monday through Sunday.
func WeekdaySeries(view []models.Record) []models.WeekdaySales {
	var sums [7]float64
	for _, r := range view {
		sums[r.OrderDate.Weekday()] += r.Sales
	}

	result := make([]models.WeekdaySales, 0, len(Weekdays))
	for _, d := range Weekdays {
		result = append(result, models.WeekdaySales{Weekday: d.String(), Sales: sums[d]})
	}
	return result
}
