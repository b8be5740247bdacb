package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-dashboard/internal/models"
)

const scenarioCSV = `Order Date,Category,Region,Sales,Profit,Order ID,Discount,IsWeekend,IsHoliday
2024-01-05,Chairs,East,100,10,O1,0.1,False,False
2024-01-06,Chairs,West,200,20,O2,0.2,True,False
2024-02-01,Tables,East,50,-5,O3,0.0,False,True
`

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenarioRecords() []models.Record {
	return []models.Record{
		{OrderDate: date(2024, 1, 5), Category: "Chairs", Region: "East", Sales: 100, Profit: 10, OrderID: "O1", Discount: 0.1},
		{OrderDate: date(2024, 1, 6), Category: "Chairs", Region: "West", Sales: 200, Profit: 20, OrderID: "O2", Discount: 0.2, IsWeekend: true},
		{OrderDate: date(2024, 2, 1), Category: "Tables", Region: "East", Sales: 50, Profit: -5, OrderID: "O3", Discount: 0.0, IsHoliday: true},
	}
}

func scenarioDataset() *Dataset {
	return NewDataset(models.RequiredColumns, scenarioRecords())
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
