package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

func TestWriteCSV_FromLoadedFile(t *testing.T) {
	content := "Order Date,Category,Region,Sales,Profit,Order ID,Discount,IsWeekend,IsHoliday,Ship Mode\n" +
		"01/05/2024,Chairs,East,100,10,O1,0.1,False,False,Standard\n" +
		"01/06/2024,Chairs,West,200,20,O2,0.2,True,False,First\n"
	ds, err := ReadDataset(context.Background(), bytes.NewBufferString(content))
	require.NoError(t, err)

	c := ds.DefaultCriteria()
	c.WeekendOnly = true

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds.Header(), Apply(ds.Records(), c)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, append(ds.Header(), "Weekday"), rows[0])
	assert.Equal(t, []string{"2024-01-06", "Chairs", "West", "200", "20", "O2", "0.2", "True", "False", "First", "Saturday"}, rows[1])
}

func TestWriteCSV_InMemoryRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.RequiredColumns, scenarioRecords()[2:]))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01", "Tables", "East", "50", "-5", "O3", "0", "False", "True", "Thursday"}, rows[1])
}

func TestWriteCSV_EmptyViewHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.RequiredColumns, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportHeader_ExistingWeekdayColumn(t *testing.T) {
	header := []string{"Order Date", "Weekday"}
	assert.Equal(t, header, ExportHeader(header))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, models.RequiredColumns, scenarioRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Weekday", rows[0][9])
	assert.Equal(t, "2024-01-05", rows[1][0])
	assert.Equal(t, "O2", rows[2][5])
	assert.Equal(t, "Saturday", rows[2][9])
}
