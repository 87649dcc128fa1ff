package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/csv"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/jsonl"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/parquet"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/sqlite"
)

type Format int

const (
	CSV Format = iota + 1
	JSONLines
	Parquet
	SQLite
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSONLines:
		return "json"
	case Parquet:
		return "parquet"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

type UnsupportedFormatError struct {
	Suffix string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Suffix == "" {
		return "unsupported output format: path has no suffix"
	}
	return fmt.Sprintf("unsupported output format: %s", e.Suffix)
}

var bySuffix = map[string]Format{
	".csv":     CSV,
	".json":    JSONLines,
	".parquet": Parquet,
	".sqlite":  SQLite,
	".db":      SQLite,
}

// FromPath picks the format from the suffix of path.
func FromPath(path string) (Format, error) {
	suffix := filepath.Ext(path)
	f, ok := bySuffix[strings.ToLower(suffix)]
	if !ok {
		return 0, &UnsupportedFormatError{Suffix: suffix}
	}
	return f, nil
}

// Write serializes ds to path in the format its suffix names.
func Write(ds *jobs.Dataset, path string) error {
	f, err := FromPath(path)
	if err != nil {
		return err
	}
	return f.Write(ds, path)
}

// Write serializes ds to path. The data goes to a temporary file in the same
// directory which is renamed over path once complete, so path never holds a
// partial file.
func (f Format) Write(ds *jobs.Dataset, path string) error {
	records := ds.Records()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	switch f {
	case CSV:
		err = csv.Encode(tmp, records)
	case JSONLines:
		err = jsonl.Encode(tmp, records)
	case Parquet:
		err = parquet.Encode(tmp, records)
	case SQLite:
		// sqlite manages the file itself, a zero length file is an empty database.
		if err = tmp.Close(); err != nil {
			return err
		}
		tmp = nil
		err = sqlite.Write(tmpPath, records)
	default:
		err = &UnsupportedFormatError{Suffix: f.String()}
	}

	if tmp != nil {
		if err == nil {
			err = tmp.Sync()
		}
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := os.Chmod(tmpPath, outputMode(path)); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// outputMode keeps the permissions of a file being replaced. New files get
// 0644 instead of the 0600 os.CreateTemp uses.
func outputMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0o644
}
