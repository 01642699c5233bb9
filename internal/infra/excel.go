package infra

// excel.go — wastage report spreadsheet built with excelize.
// One row per (truck, date) reconciliation, with the load/sold/wastage
// breakdown the back office reviews each week.

import (
	"bytes"
	"fmt"

	"github.com/Alishanbouraa/chickensap/internal/model"

	"github.com/xuri/excelize/v2"
)

var wastageHeaders = []string{
	"Date", "Truck", "Load Weight (kg)", "Sold Weight (kg)",
	"Wastage (kg)", "Wastage %",
}

// BuildWastageWorkbook renders reconciliation rows into an in-memory xlsx.
func BuildWastageWorkbook(recs []model.DailyReconciliation) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Wastage"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("excel: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range wastageHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, rec := range recs {
		plate := ""
		if rec.Truck != nil {
			plate = rec.Truck.PlateNumber
		}
		values := []interface{}{
			rec.ReconciliationDate.Format("2006-01-02"),
			plate,
			rec.LoadWeight.InexactFloat64(),
			rec.SoldWeight.InexactFloat64(),
			rec.WastageWeight.InexactFloat64(),
			rec.WastagePercentage.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: write buffer: %w", err)
	}
	return buf, nil
}
