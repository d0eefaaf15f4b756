package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"econviz/internal/config"
)

// FileValidator checks snapshot inputs and export destinations
type FileValidator struct {
	logger  *slog.Logger
	maxSize int64
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:  logger.With(slog.String("component", "file_validator")),
		maxSize: config.MaxSnapshotFileSize,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSnapshotFile checks that path is a readable snapshot of a supported type
func (v *FileValidator) ValidateSnapshotFile(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !IsSnapshotExtension(ext) {
		v.logger.Error("unsupported snapshot type",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("file %s is not a snapshot (extension: %s)", path, ext)
	}

	if err := v.ValidateFile(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("snapshot %s is empty", path)
	}
	if info.Size() > v.maxSize {
		return fmt.Errorf("snapshot %s is %d bytes, limit is %d", path, info.Size(), v.maxSize)
	}
	return nil
}

// ValidateSnapshotSources validates every path and reports all failures together
func (v *FileValidator) ValidateSnapshotSources(paths []string) error {
	if len(paths) == 0 {
		return errors.New("no snapshot sources configured")
	}

	var errs []error
	for _, p := range paths {
		if err := v.ValidateSnapshotFile(p); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	v.logger.Info("snapshot sources validated", slog.Int("files", len(paths)))
	return nil
}

// ExpandSources replaces every directory in paths with the snapshot files it holds
func (v *FileValidator) ExpandSources(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := v.DiscoverSnapshots(p)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// DiscoverSnapshots lists the snapshot files in dir in name order
func (v *FileValidator) DiscoverSnapshots(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") || !IsSnapshotExtension(filepath.Ext(name)) {
			continue
		}
		found = append(found, filepath.Join(dir, name))
	}
	sort.Strings(found)

	if len(found) == 0 {
		v.logger.Warn("no snapshot files found", slog.String("directory", dir))
	} else {
		v.logger.Info("snapshot files discovered",
			slog.String("directory", dir),
			slog.Int("files_found", len(found)))
	}
	return found, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// IsSnapshotExtension reports whether ext names a loadable snapshot type
func IsSnapshotExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range config.SnapshotExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
