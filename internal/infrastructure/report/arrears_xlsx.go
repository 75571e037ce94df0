package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ArrearsSheet is the worksheet holding the overdue list
const ArrearsSheet = "Tunggakan"

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArrearsRow is one overdue tenant
type ArrearsRow struct {
	TenantName   string
	BusinessName string
	Location     string
	StallNumber  string
	RateType     string
	LastPayment  *time.Time
	DaysElapsed  int
	Label        string
	Rate         decimal.Decimal
	Arrears      decimal.Decimal
}

var arrearsHeaders = []string{
	"Bil", "Nama Peniaga", "Perniagaan", "Lokasi", "No. Petak", "Kadar",
	"Bayaran Terakhir", "Hari", "Tempoh", "Sewa (RM)", "Tunggakan (RM)",
}

// WriteArrearsXLSX writes rows to w as a workbook with a single
// "Tunggakan" sheet: a title line, a header row, one row per tenant and a
// totals row summing the arrears column.
func WriteArrearsXLSX(w io.Writer, rows []ArrearsRow, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ArrearsSheet); err != nil {
		return err
	}

	title := fmt.Sprintf("Senarai Tunggakan Sewa setakat %s", generatedAt.Format("02/01/2006"))
	if err := f.SetCellValue(ArrearsSheet, "A1", title); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	const headerRow = 3
	for i, h := range arrearsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(ArrearsSheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(arrearsHeaders), headerRow)
	if err := f.SetCellStyle(ArrearsSheet, first, last, headerStyle); err != nil {
		return err
	}

	total := decimal.Zero
	row := headerRow + 1
	for i, r := range rows {
		lastPaid := "-"
		if r.LastPayment != nil {
			lastPaid = r.LastPayment.Format("2006-01-02")
		}
		values := []interface{}{
			i + 1, r.TenantName, r.BusinessName, r.Location, r.StallNumber, r.RateType,
			lastPaid, r.DaysElapsed, r.Label, r.Rate.InexactFloat64(), r.Arrears.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(ArrearsSheet, cell, &values); err != nil {
			return err
		}
		total = total.Add(r.Arrears)
		row++
	}

	if err := f.SetCellValue(ArrearsSheet, fmt.Sprintf("A%d", row), "JUMLAH"); err != nil {
		return err
	}
	if err := f.SetCellValue(ArrearsSheet, fmt.Sprintf("K%d", row), total.InexactFloat64()); err != nil {
		return err
	}
	if err := f.SetCellStyle(ArrearsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("K%d", row), headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(ArrearsSheet, fmt.Sprintf("J%d", headerRow+1), fmt.Sprintf("K%d", row), moneyStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(ArrearsSheet, "B", "D", 24); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
