package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindHeaderRow(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{
			name: "first row",
			rows: [][]string{{"series", "date", "value"}},
			want: 0,
		},
		{
			name: "after a title block",
			rows: [][]string{{"Indicator snapshot"}, {}, {"Series ID", "Date", "Value", "Category"}},
			want: 2,
		},
		{
			name: "value column missing",
			rows: [][]string{{"series", "date", "Category"}},
			want: -1,
		},
		{
			name: "header beyond scan window",
			rows: append(make([][]string, headerScanRows), []string{"series", "date", "value"}),
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findHeaderRow(tt.rows))
		})
	}
}

func TestDecodeRows_SkipsBlankAndDropsEmptyValues(t *testing.T) {
	header := []string{"series", "date", "value", "Category", "Type", "Bucket"}
	body := [][]string{
		{"SP500", "2001-01-01", "1,320.28", "S&P 500", "Stocks", "None"},
		{"", " ", ""},
		{"SP500", "2001-02-01", "nan", "S&P 500", "Stocks", ""},
		{"SP500", "2001-03-01", "1160.33", "S&P 500", "Stocks"},
	}

	obs, stats, err := decodeRows(header, body, 2)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 3, Kept: 2, Dropped: 1}, stats)
	require.Len(t, obs, 2)
	assert.Equal(t, 1320.28, obs[0].Value)
	assert.Empty(t, obs[0].Bucket)
	assert.Equal(t, month(2001, time.March), obs[1].Date)
	assert.Equal(t, 2001, obs[1].Year)
}

func TestDecodeRows_ReportsSourceLine(t *testing.T) {
	header := []string{"series", "date", "value", "Category", "Type"}
	body := [][]string{
		{"SP500", "2001-01-01", "1", "S&P 500", "Stocks"},
		{"SP500", "not a date", "1", "S&P 500", "Stocks"},
	}

	_, _, err := decodeRows(header, body, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Contains(t, err.Error(), "row 6")
}

func TestParseDate(t *testing.T) {
	want := month(2010, time.April)
	for _, s := range []string{"2010-04-01", "2010-04-01 00:00:00", "4/1/2010", "04/01/2010", "4/1/10", "2010/04/01"} {
		t.Run(s, func(t *testing.T) {
			got, err := parseDate(s)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := parseDate("April 2010")
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
