package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"econviz/pkg/contracts/domain"
)

const (
	chartSheet = "Chart"
	metaSheet  = "Meta"
)

func writeXLSX(out io.Writer, data *domain.ChartData) error {
	f, err := buildWorkbook(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// buildWorkbook lays the derived table out on a Chart sheet with typed
// numeric cells and the chart labels on a Meta sheet.
func buildWorkbook(data *domain.ChartData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), chartSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeChartSheet(f, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMetaSheet(f, data); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeChartSheet(f *excelize.File, data *domain.ChartData) error {
	header := make([]interface{}, len(ChartHeaders))
	for i, h := range ChartHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(chartSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(chartSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, r := range data.Rows {
		var yoy interface{}
		if r.YoYChange != nil {
			yoy = roundRatio(*r.YoYChange)
		}
		row := []interface{}{
			formatDate(r.Date),
			r.SeriesID,
			r.Category,
			string(r.Type),
			r.Bucket,
			r.Value,
			r.Baseline,
			formatDate(r.BaselineDate),
			r.BaselineYear,
			roundRatio(r.Change),
			yoy,
			r.PartialData,
			r.Href,
			r.Leaf,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(chartSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.SetPanes(chartSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeMetaSheet(f *excelize.File, data *domain.ChartData) error {
	if _, err := f.NewSheet(metaSheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"title", data.Meta.Title},
		{"y_axis_title", data.Meta.YAxisTitle},
		{"chart_type", string(data.Meta.ChartType)},
		{"color_scheme", data.Meta.ColorScheme},
		{"base_href", data.BaseHref},
		{"categories", strings.Join(data.Categories, "; ")},
		{"omitted", strings.Join(data.Omitted, "; ")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(metaSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
