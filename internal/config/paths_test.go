package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(exe), paths.ExecutableDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
}

func TestNewPaths_Helpers(t *testing.T) {
	root := t.TempDir()
	paths := NewPaths(root)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "data", got: paths.GetDataPath("cpi.csv"), want: filepath.Join(root, "data", "cpi.csv")},
		{name: "export", got: paths.GetExportPath("chart.xlsx"), want: filepath.Join(root, "exports", "chart.xlsx")},
		{name: "log", got: paths.GetLogPath("econviz.log"), want: filepath.Join(root, "logs", "econviz.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ExportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// idempotent
	assert.NoError(t, paths.EnsureDirectories())
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "cpi.csv")
	require.NoError(t, os.WriteFile(present, []byte("series\n"), 0644))

	assert.True(t, FileExists(present))
	assert.False(t, FileExists(filepath.Join(dir, "labor.xlsx")))
}
