package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir is where the scenario message files are installed.
	DefaultDataDir = "/var/lib/ingestsim/data"

	// ParsingDir and SchedulingDir are the data directory's two groups.
	ParsingDir    = "parsing"
	SchedulingDir = "scheduling"

	// LargeFileName is the oversized message used by the ingest
	// resource-exhaustion scenario. It is too big to ship and is created on
	// first use.
	LargeFileName = "MSG_LARGE_FILE"

	// DefaultLargeFileSize is 1 GiB.
	DefaultLargeFileSize int64 = 1 << 30
)

// CheckDataDir returns an error unless dir is an existing directory.
func CheckDataDir(dir string) error {
	if dir == "" {
		return errors.New("data directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", dir)
	}
	return nil
}

// EnsureLargeFile creates parsing/MSG_LARGE_FILE under dataDir when it does
// not exist. The file is sparse: it reports size bytes without allocating
// them. An existing file is left untouched whatever its size.
func EnsureLargeFile(dataDir string, size int64) (path string, created bool, err error) {
	if size <= 0 {
		return "", false, fmt.Errorf("large file size must be positive, got %d", size)
	}

	parsing := filepath.Join(dataDir, ParsingDir)
	info, err := os.Stat(parsing)
	if err != nil {
		return "", false, fmt.Errorf("parsing directory: %w", err)
	}
	if !info.IsDir() {
		return "", false, fmt.Errorf("%s is not a directory", parsing)
	}

	path = filepath.Join(parsing, LargeFileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", false, fmt.Errorf("create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(path)
		return "", false, fmt.Errorf("size %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", false, fmt.Errorf("close %s: %w", path, err)
	}
	return path, true, nil
}
