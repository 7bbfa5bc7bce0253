// Package export renders charts as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/maendeleo/core/chart"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Chart"
)

// WriteXLSX writes a workbook holding the chart data, one column per dataset and one row per label,
// along with a native line chart of it.
func WriteXLSX(w io.Writer, cfg chart.Config) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	set := func(col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, v)
	}

	if err := set(1, 1, "Week"); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, label := range cfg.Labels {
		if err := set(1, i+2, label); err != nil {
			return errors.Wrap(err, "writing labels")
		}
	}
	for j, ds := range cfg.Datasets {
		col := j + 2
		if err := set(col, 1, ds.Label); err != nil {
			return errors.Wrap(err, "writing header")
		}
		for i, v := range ds.Data {
			if !v.Valid {
				continue
			}
			if err := set(col, i+2, v.Float64); err != nil {
				return errors.Wrap(err, "writing data")
			}
		}
	}

	if len(cfg.Labels) > 0 && len(cfg.Datasets) > 0 {
		if err := addLineChart(f, cfg); err != nil {
			return err
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

func addLineChart(f *excelize.File, cfg chart.Config) error {
	lastRow := len(cfg.Labels) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheetName, lastRow)

	series := make([]excelize.ChartSeries, 0, len(cfg.Datasets))
	for j := range cfg.Datasets {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return errors.Wrap(err, "naming column")
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheetName, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheetName, col, col, lastRow),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(cfg.Datasets)+3, 2)
	if err != nil {
		return errors.Wrap(err, "placing chart")
	}
	err = f.AddChart(sheetName, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
	})
	return errors.Wrap(err, "adding chart")
}
