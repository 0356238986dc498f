// Package exporter renders gold products into files meant for human
// consumption.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/gold"
)

const dashboardSheet = "Dashboard"

var dashboardHeader = []string{
	"Indicator", "Name", "Unit", "Latest Date", "Latest Value",
	"Trend", "Annual Change", "Health Score", "Health Label",
}

// WriteDashboardExcel renders the dashboard extract as a spreadsheet at
// path.
func WriteDashboardExcel(rows []gold.DashboardRow, path string) error {
	if len(rows) == 0 {
		return apperrors.NewTransformationError("no dashboard rows to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), dashboardSheet)

	for i, title := range dashboardHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return apperrors.NewTransformationError("build header cell", err)
		}
		if err := f.SetCellValue(dashboardSheet, cell, title); err != nil {
			return apperrors.NewTransformationError("write header cell", err)
		}
	}

	for rowIdx, row := range rows {
		values := []interface{}{
			row.Indicator,
			row.Name,
			row.Unit,
			row.LatestDate,
			row.LatestValue,
			derefString(row.Trend),
			derefFloat(row.AnnualChange),
			derefFloat(row.HealthScore),
			derefString(row.HealthLabel),
		}
		for colIdx, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return apperrors.NewTransformationError("build data cell", err)
			}
			if err := f.SetCellValue(dashboardSheet, cell, v); err != nil {
				return apperrors.NewTransformationError(fmt.Sprintf("write cell for %s", row.Indicator), err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save dashboard workbook", err).WithContext("path", path)
	}
	return nil
}

func derefString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
