package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
	dateLayout = "2006-01-02"
)

var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// Dataset is the immutable record collection loaded once at startup.
type Dataset struct {
	header     []string
	records    []models.Record
	categories []string
	regions    []string
	start      time.Time
	end        time.Time
	loadedAt   time.Time
}

type columnIndex map[string]int

// LoadDataset reads the CSV at path. No partial dataset is returned on failure.
func LoadDataset(ctx context.Context, path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.DatasetNotFound(path, err)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return ReadDataset(ctx, file)
}

// ReadDataset parses delimited text with a header row.
func ReadDataset(ctx context.Context, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.MalformedDataset(1, "", fmt.Errorf("empty file"))
		}
		return nil, apperrors.MalformedDataset(1, "", err)
	}
	header = normalizeHeader(header)

	idx, err := validateHeader(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := len(rows) + 2
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, apperrors.MalformedDataset(line, "", err)
		}
		rows = append(rows, row)
	}

	records, err := parseRows(ctx, rows, idx)
	if err != nil {
		return nil, err
	}

	return NewDataset(header, records), nil
}

// NewDataset wraps already parsed records. Category and region options keep
// first-appearance order.
func NewDataset(header []string, records []models.Record) *Dataset {
	d := &Dataset{
		header:   header,
		records:  records,
		loadedAt: time.Now(),
	}

	seenCategory := make(map[string]struct{})
	seenRegion := make(map[string]struct{})
	for i, r := range records {
		if _, ok := seenCategory[r.Category]; !ok {
			seenCategory[r.Category] = struct{}{}
			d.categories = append(d.categories, r.Category)
		}
		if _, ok := seenRegion[r.Region]; !ok {
			seenRegion[r.Region] = struct{}{}
			d.regions = append(d.regions, r.Region)
		}
		if i == 0 || r.OrderDate.Before(d.start) {
			d.start = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(d.end) {
			d.end = r.OrderDate
		}
	}

	return d
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func validateHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.SchemaMismatch(missing)
	}

	return idx, nil
}

func parseRows(ctx context.Context, rows [][]string, idx columnIndex) ([]models.Record, error) {
	records := make([]models.Record, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, col, err := parseRecord(rows[i], idx)
				if err != nil {
					return apperrors.MalformedDataset(i+2, col, err)
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func parseRecord(fields []string, idx columnIndex) (models.Record, string, error) {
	cell := func(col string) string {
		return strings.TrimSpace(fields[idx[col]])
	}

	orderDate, err := ParseDate(cell(models.ColOrderDate))
	if err != nil {
		return models.Record{}, models.ColOrderDate, err
	}

	sales, err := parseNumber(cell(models.ColSales))
	if err != nil {
		return models.Record{}, models.ColSales, err
	}

	profit, err := parseNumber(cell(models.ColProfit))
	if err != nil {
		return models.Record{}, models.ColProfit, err
	}

	discount, err := parseNumber(cell(models.ColDiscount))
	if err != nil {
		return models.Record{}, models.ColDiscount, err
	}

	weekend, err := ParseBool(cell(models.ColIsWeekend))
	if err != nil {
		return models.Record{}, models.ColIsWeekend, err
	}

	holiday, err := ParseBool(cell(models.ColIsHoliday))
	if err != nil {
		return models.Record{}, models.ColIsHoliday, err
	}

	return models.Record{
		OrderDate: orderDate,
		Category:  cell(models.ColCategory),
		Region:    cell(models.ColRegion),
		Sales:     sales,
		Profit:    profit,
		OrderID:   cell(models.ColOrderID),
		Discount:  discount,
		IsWeekend: weekend,
		IsHoliday: holiday,
		Fields:    fields,
	}, "", nil
}

// parseNumber rejects NaN and infinities, which no summary or encoder can carry.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

// ParseDate accepts the common spreadsheet date layouts and drops any time
// of day, returning midnight UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseBool accepts True/False in any case, t/f, 1/0 and yes/no.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", s)
}

// Records returns the shared backing slice; callers must not modify it.
func (d *Dataset) Records() []models.Record {
	return d.records
}

func (d *Dataset) Header() []string {
	return d.header
}

func (d *Dataset) Categories() []string {
	return d.categories
}

func (d *Dataset) Regions() []string {
	return d.regions
}

func (d *Dataset) Len() int {
	return len(d.records)
}

func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// DateSpan returns the earliest and latest order dates.
func (d *Dataset) DateSpan() (time.Time, time.Time) {
	return d.start, d.end
}

// DefaultCriteria selects the whole dataset.
func (d *Dataset) DefaultCriteria() models.FilterCriteria {
	return models.FilterCriteria{
		Start:      d.start,
		End:        d.end,
		Categories: append([]string(nil), d.categories...),
		Regions:    append([]string(nil), d.regions...),
	}
}

func (d *Dataset) Options() models.FilterOptions {
	opts := models.FilterOptions{
		Categories: d.categories,
		Regions:    d.regions,
	}
	if len(d.records) > 0 {
		opts.Start = d.start.Format(dateLayout)
		opts.End = d.end.Format(dateLayout)
	}
	return opts
}
