package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econviz/internal/config"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	tempDir := t.TempDir()
	paths := config.NewPaths(tempDir)
	require.NoError(t, paths.EnsureDirectories())
	return NewCSVWriter(paths, nil), tempDir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, utf8BOM), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(content[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	headers := []string{"category", "change"}
	records := [][]string{
		{"Food", "0.5"},
		{"Food, away from home", "0.25"},
	}
	require.NoError(t, writer.WriteSimpleCSV("food.csv", headers, records))

	got := readCSV(t, filepath.Join(tempDir, "exports", "food.csv"))
	assert.Equal(t, append([][]string{headers}, records...), got)
}

func TestCSVWriter_AbsolutePathAndNestedDir(t *testing.T) {
	writer, _ := setupTestEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")

	require.NoError(t, writer.WriteCSV(target, WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}},
	}))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(content))
}

func TestCSVWriter_Overwrites(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("x.csv", []string{"h"}, [][]string{{"1"}, {"2"}}))
	require.NoError(t, writer.WriteSimpleCSV("x.csv", []string{"h"}, [][]string{{"3"}}))

	got := readCSV(t, filepath.Join(tempDir, "exports", "x.csv"))
	assert.Equal(t, [][]string{{"h"}, {"3"}}, got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteCSVTo(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSVTo(&buf, WriteOptions{
		Headers: []string{"name", "note"},
		Records: [][]string{{"S&P 500", "quoted \"value\""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,note\nS&P 500,\"quoted \"\"value\"\"\"\n", buf.String())

	err = WriteCSVTo(failingWriter{}, WriteOptions{BOMPrefix: true})
	assert.ErrorContains(t, err, "failed to write BOM")
}
