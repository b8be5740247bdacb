package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const (
	ExportBaseName  = "filtered_ai_sales_forecasting_data"
	CSVFilename     = ExportBaseName + ".csv"
	CSVContentType  = "text/csv; charset=utf-8"
	XLSXFilename    = ExportBaseName + ".xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	weekdayColumn = "Weekday"
	xlsxSheetName = "Filtered Data"
)

// ExportHeader is the source header plus a derived Weekday column.
func ExportHeader(header []string) []string {
	if slices.Contains(header, weekdayColumn) {
		return slices.Clone(header)
	}
	return append(slices.Clone(header), weekdayColumn)
}

// WriteCSV serializes view in the source layout. Order dates are normalized
// to YYYY-MM-DD, every other cell is written as read.
func WriteCSV(w io.Writer, header []string, view []models.Record) error {
	cw := csv.NewWriter(w)
	out := ExportHeader(header)

	if err := cw.Write(out); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range view {
		if err := cw.Write(ExportRow(header, out, r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same columns as WriteCSV into a single worksheet,
// with numeric and boolean cells typed.
func WriteXLSX(w io.Writer, header []string, view []models.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	out := ExportHeader(header)
	if err := sw.SetRow("A1", toCells(out)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range view {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, typedRow(out, ExportRow(header, out, r), r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

// ExportRow renders r in the out layout returned by ExportHeader(header).
// The data table uses it too, so the screen and the download agree.
func ExportRow(header, out []string, r models.Record) []string {
	row := make([]string, len(out))
	for i, col := range header {
		if i < len(r.Fields) {
			row[i] = r.Fields[i]
		} else {
			row[i] = recordCell(col, r)
		}
	}
	for i, col := range out {
		switch col {
		case models.ColOrderDate:
			row[i] = r.OrderDate.Format(dateLayout)
		case weekdayColumn:
			row[i] = r.Weekday()
		}
	}
	return row
}

// recordCell renders a required column from the parsed record, for rows that
// were built in memory rather than read from a file.
func recordCell(col string, r models.Record) string {
	switch col {
	case models.ColOrderDate:
		return r.OrderDate.Format(dateLayout)
	case models.ColCategory:
		return r.Category
	case models.ColRegion:
		return r.Region
	case models.ColSales:
		return strconv.FormatFloat(r.Sales, 'f', -1, 64)
	case models.ColProfit:
		return strconv.FormatFloat(r.Profit, 'f', -1, 64)
	case models.ColOrderID:
		return r.OrderID
	case models.ColDiscount:
		return strconv.FormatFloat(r.Discount, 'f', -1, 64)
	case models.ColIsWeekend:
		return formatBool(r.IsWeekend)
	case models.ColIsHoliday:
		return formatBool(r.IsHoliday)
	}
	return ""
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func typedRow(out, cells []string, r models.Record) []any {
	row := make([]any, len(cells))
	for i, col := range out {
		switch col {
		case models.ColSales:
			row[i] = r.Sales
		case models.ColProfit:
			row[i] = r.Profit
		case models.ColDiscount:
			row[i] = r.Discount
		case models.ColIsWeekend:
			row[i] = r.IsWeekend
		case models.ColIsHoliday:
			row[i] = r.IsHoliday
		default:
			row[i] = cells[i]
		}
	}
	return row
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
