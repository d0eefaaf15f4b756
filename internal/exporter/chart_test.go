package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"econviz/internal/config"
	"econviz/pkg/contracts/domain"
)

func sampleChart() *domain.ChartData {
	yoy := 0.1 + 0.2
	day := func(y int, m time.Month) time.Time {
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
	return &domain.ChartData{
		Rows: []domain.DerivedRow{
			{
				Observation: domain.Observation{
					SeriesID: "CUSR0000SAF", Date: day(2000, time.January), Value: 167,
					Category: "Food", Type: domain.SeriesTypeCPI, Year: 2000,
				},
				Href:         "/chart?parent=CUSR0000SAF",
				Baseline:     167,
				BaselineDate: day(2000, time.January),
				BaselineYear: 2000,
			},
			{
				Observation: domain.Observation{
					SeriesID: "CUSR0000SAF", Date: day(2010, time.January), Value: 250.5,
					Category: "Food", Type: domain.SeriesTypeCPI, Year: 2010,
				},
				Href:         "/chart?parent=CUSR0000SAF",
				Baseline:     167,
				BaselineDate: day(2000, time.January),
				BaselineYear: 2000,
				Change:       0.5,
				YoYChange:    &yoy,
			},
			{
				Observation: domain.Observation{
					SeriesID: "LEU0252881500", Date: day(2010, time.October), Value: 747,
					Category: "Earnings - Total", Type: domain.SeriesTypeEarnings, Bucket: "Total",
					Leaf: true, PeriodName: "4th Quarter", Year: 2010,
				},
				Baseline:     576,
				BaselineDate: day(2000, time.January),
				BaselineYear: 2000,
				Change:       0.296875,
				PartialData:  "Data Begins 2000",
			},
		},
		BaseHref: "/chart?chart_type=Line+Chart",
		Meta: domain.ChartMeta{
			ChartType:   domain.ChartTypeLine,
			Title:       "Change Since 2000 by Category",
			YAxisTitle:  "Change Since 2000",
			ColorScheme: "category10",
		},
		Categories: []string{"Food", "Earnings - Total"},
		Omitted:    []string{"S&P 500"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: " XLSX ", want: FormatXLSX},
		{input: "json", want: FormatJSON},
		{input: "pdf", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "chart.csv", FileName("", FormatCSV))
	assert.Equal(t, "food.xlsx", FileName("food", FormatXLSX))
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestChartRecords(t *testing.T) {
	records := ChartRecords(sampleChart())
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Len(t, r, len(ChartHeaders))
	}

	assert.Equal(t, []string{
		"2010-01-01", "CUSR0000SAF", "Food", "CPI", "", "250.5",
		"167", "2000-01-01", "2000", "0.5", "0.3", "", "/chart?parent=CUSR0000SAF", "false",
	}, records[1])
	assert.Equal(t, "", records[0][10])
	assert.Equal(t, "Data Begins 2000", records[2][11])
	assert.Equal(t, "true", records[2][13])
}

func TestChartExporter_WriteCSV(t *testing.T) {
	exp := NewChartExporter(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, FormatCSV, sampleChart()))

	body := buf.Bytes()
	require.True(t, bytes.HasPrefix(body, utf8BOM))
	rows, err := csv.NewReader(bytes.NewReader(body[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, ChartHeaders, rows[0])
	assert.Len(t, rows, 4)
}

func TestChartExporter_WriteJSON(t *testing.T) {
	exp := NewChartExporter(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, FormatJSON, sampleChart()))

	var decoded domain.ChartData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Change Since 2000 by Category", decoded.Meta.Title)
	assert.Len(t, decoded.Rows, 3)
	assert.Nil(t, decoded.Rows[0].YoYChange)
}

func TestChartExporter_WriteXLSX(t *testing.T) {
	exp := NewChartExporter(nil, nil)
	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, FormatXLSX, sampleChart()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{chartSheet, metaSheet}, f.GetSheetList())

	rows, err := f.GetRows(chartSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, ChartHeaders, rows[0])
	assert.Equal(t, "Food", rows[2][2])
	assert.Equal(t, "0.5", rows[2][9])
	assert.Equal(t, "TRUE", rows[3][13])

	title, err := f.GetCellValue(metaSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Change Since 2000 by Category", title)
	omitted, err := f.GetCellValue(metaSheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "S&P 500", omitted)
}

func TestChartExporter_Errors(t *testing.T) {
	exp := NewChartExporter(nil, nil)
	var buf bytes.Buffer

	assert.ErrorIs(t, exp.Write(&buf, Format("pdf"), sampleChart()), ErrUnsupportedFormat)
	assert.Error(t, exp.Write(&buf, FormatCSV, nil))

	_, err := exp.ExportFile("x.csv", FormatCSV, nil)
	assert.Error(t, err)
}

func TestChartExporter_ExportFile(t *testing.T) {
	root := t.TempDir()
	exp := NewChartExporter(config.NewPaths(root), nil)

	for _, format := range []Format{FormatCSV, FormatXLSX, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			path, err := exp.ExportFile(FileName("food", format), format, sampleChart())
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "exports", "food."+string(format)), path)
			assert.FileExists(t, path)
		})
	}
}
