package output

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

// Format is a long table file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported table format: %s", path)
	}
}

// ReadLong reads a long table in any supported format.
func ReadLong(ctx context.Context, path string) (*models.LongTable, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return ReadLongCSV(path)
	case FormatParquet:
		return ReadLongParquet(path)
	default:
		return ReadLongSQLite(ctx, path)
	}
}
