package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

func TestLoadDataset_Valid(t *testing.T) {
	path := writeTempCSV(t, scenarioCSV)

	ds, err := LoadDataset(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, models.RequiredColumns, ds.Header())
	assert.Equal(t, []string{"Chairs", "Tables"}, ds.Categories())
	assert.Equal(t, []string{"East", "West"}, ds.Regions())

	start, end := ds.DateSpan()
	assert.Equal(t, date(2024, 1, 5), start)
	assert.Equal(t, date(2024, 2, 1), end)

	first := ds.Records()[0]
	assert.Equal(t, "O1", first.OrderID)
	assert.InDelta(t, 0.1, first.Discount, 1e-9)
	assert.False(t, first.IsWeekend)
	assert.True(t, ds.Records()[1].IsWeekend)
	assert.True(t, ds.Records()[2].IsHoliday)
	assert.InDelta(t, -5, ds.Records()[2].Profit, 1e-9)
}

func TestLoadDataset_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	ds, err := LoadDataset(context.Background(), path)

	assert.Nil(t, ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDatasetNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadDataset_MissingProfit(t *testing.T) {
	content := strings.Replace(scenarioCSV, "Profit,", "Margin,", 1)
	path := writeTempCSV(t, content)

	ds, err := LoadDataset(context.Background(), path)

	assert.Nil(t, ds)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeSchemaMismatch, appErr.Code)
	assert.Equal(t, []string{"Profit"}, appErr.Fields)
}

func TestLoadDataset_ListsEveryMissingField(t *testing.T) {
	path := writeTempCSV(t, "Order Date,Category,Sales\n2024-01-01,A,1\n")

	_, err := LoadDataset(context.Background(), path)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{"Region", "Profit", "Order ID", "Discount", "IsWeekend", "IsHoliday"}, appErr.Fields)
}

func TestReadDataset_Malformed(t *testing.T) {
	header := strings.Join(models.RequiredColumns, ",")
	tests := []struct {
		name   string
		csv    string
		column string
	}{
		{name: "empty file", csv: ""},
		{name: "bad date", csv: header + "\nnot-a-date,A,E,1,1,O1,0,False,False\n", column: "Order Date"},
		{name: "bad sales", csv: header + "\n2024-01-01,A,E,abc,1,O1,0,False,False\n", column: "Sales"},
		{name: "bad discount", csv: header + "\n2024-01-01,A,E,1,1,O1,x,False,False\n", column: "Discount"},
		{name: "NaN discount", csv: header + "\n2024-01-01,A,E,1,1,O1,NaN,False,False\n", column: "Discount"},
		{name: "infinite sales", csv: header + "\n2024-01-01,A,E,Inf,1,O1,0,False,False\n", column: "Sales"},
		{name: "negative infinite profit", csv: header + "\n2024-01-01,A,E,1,-infinity,O1,0,False,False\n", column: "Profit"},
		{name: "bad weekend flag", csv: header + "\n2024-01-01,A,E,1,1,O1,0,maybe,False\n", column: "IsWeekend"},
		{name: "ragged row", csv: header + "\n2024-01-01,A,E\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadDataset(context.Background(), strings.NewReader(tt.csv))

			assert.Nil(t, ds)
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.Equal(t, apperrors.CodeMalformedDataset, appErr.Code)
			if tt.column != "" {
				assert.Equal(t, []string{tt.column}, appErr.Fields)
			}
		})
	}
}

func TestReadDataset_HeaderOnly(t *testing.T) {
	ds, err := ReadDataset(context.Background(), strings.NewReader(strings.Join(models.RequiredColumns, ",")+"\n"))
	require.NoError(t, err)

	assert.Zero(t, ds.Len())
	assert.Equal(t, models.FilterOptions{}, ds.Options())
}

func TestReadDataset_ExtraColumnsAndBOM(t *testing.T) {
	content := "\ufeffRow ID,Order Date,Category,Region,Sales,Profit,Order ID,Discount,IsWeekend,IsHoliday,Ship Mode\n" +
		"7,01/15/2024,Chairs,\"East, Upper\",10.5,1,O9,0.05,true,0,Second Class\n"

	ds, err := ReadDataset(context.Background(), strings.NewReader(content))
	require.NoError(t, err)

	require.Equal(t, 1, ds.Len())
	r := ds.Records()[0]
	assert.Equal(t, date(2024, 1, 15), r.OrderDate)
	assert.Equal(t, "East, Upper", r.Region)
	assert.True(t, r.IsWeekend)
	assert.False(t, r.IsHoliday)
	assert.Equal(t, "Row ID", ds.Header()[0])
	assert.Equal(t, "Second Class", r.Fields[10])
}

func TestReadDataset_PreservesOrderAcrossBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString(strings.Join(models.RequiredColumns, ",") + "\n")
	n := batchSize*2 + 17
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2024-03-01,C,R,%d,0,O%d,0,False,False\n", i, i)
	}

	ds, err := ReadDataset(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	require.Equal(t, n, ds.Len())
	for i, r := range ds.Records() {
		if r.Sales != float64(i) {
			t.Fatalf("record %d out of order: sales %v", i, r.Sales)
		}
	}
}

func TestReadDataset_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadDataset(ctx, strings.NewReader(scenarioCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-01-05", "2024-01-05 13:45:00", "2024-01-05T23:00:00Z", "01/05/2024", "1/5/2024", "2024/01/05"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, date(2024, 1, 5), got, in)
	}

	_, err := ParseDate("05.01.2024")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"True", "TRUE", "t", "1", "yes"} {
		v, err := ParseBool(in)
		require.NoError(t, err)
		assert.True(t, v, in)
	}
	for _, in := range []string{"False", "false", "F", "0", "no"} {
		v, err := ParseBool(in)
		require.NoError(t, err)
		assert.False(t, v, in)
	}
	_, err := ParseBool("")
	assert.Error(t, err)
}

func TestDataset_DefaultCriteriaIsACopy(t *testing.T) {
	ds := scenarioDataset()

	c := ds.DefaultCriteria()
	c.Categories[0] = "Mutated"

	assert.Equal(t, "Chairs", ds.Categories()[0])
	assert.Equal(t, models.FilterOptions{
		Start:      "2024-01-05",
		End:        "2024-02-01",
		Categories: []string{"Chairs", "Tables"},
		Regions:    []string{"East", "West"},
	}, ds.Options())
}
