package models

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const priceExportSheet = "Sheet1"

var priceExportHeadings = []string{"Date", "State", "City", "Market", "Item", "Unit", "Price"}

type ExcelExporter interface {
	GetCellValues() []interface{}
}

func (v PriceReportView) GetCellValues() []interface{} {
	return []interface{}{
		v.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		v.StateName,
		v.CityName,
		v.MarketName,
		v.ItemName,
		v.UnitName,
		v.Price.InexactFloat64(),
	}
}

// ExportPriceReports writes matching reports (newest first, at most max rows) as an xlsx workbook.
func ExportPriceReports(ctx context.Context, w io.Writer, filter PriceReportFilter, max int) (int, error) {
	reports, err := FindPriceReports(ctx, filter, max)
	if err != nil {
		return 0, err
	}

	rows := make([]ExcelExporter, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, r)
	}

	f, err := buildWorkbook(rows, priceExportHeadings...)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}
	return len(reports), nil
}

func buildWorkbook(data []ExcelExporter, headings ...string) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(priceExportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	rowNo := 2
	for _, d := range data {
		for i, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(priceExportSheet, cell, value); err != nil {
				return nil, err
			}
		}
		rowNo++
	}
	return f, nil
}
