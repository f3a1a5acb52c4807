// Package tableio loads tables from files and databases and exports them back.
package tableio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal/logging"
)

// Format names a tabular source or export format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatXLSX    Format = "xlsx"
	FormatSQL     Format = "sql"
	FormatParquet Format = "parquet"
)

// Source describes where a table comes from. Exactly one of Path or Table is set.
type Source struct {
	Path   string         `json:"path,omitempty"`   // file path, sqlite file or postgres URL
	Format Format         `json:"format,omitempty"` // detected from Path when empty
	Query  string         `json:"query,omitempty"`  // required for FormatSQL
	Table  *dataset.Table `json:"-"`                // in-memory table used as-is
}

// Validate checks that the source names exactly one origin
func (s Source) Validate() error {
	switch {
	case s.Path == "" && s.Table == nil:
		return fmt.Errorf("%w: source needs a path or an in-memory table", core.ErrConfiguration)
	case s.Path != "" && s.Table != nil:
		return fmt.Errorf("%w: source has both a path and an in-memory table", core.ErrConfiguration)
	}
	return nil
}

// ResolveFormat returns the explicit format or the one implied by Path
func (s Source) ResolveFormat() (Format, error) {
	if s.Format != "" {
		return ParseFormat(string(s.Format))
	}
	return DetectFormat(s.Path)
}

// ParseFormat validates a format tag
func ParseFormat(tag string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))); f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatSQL:
		return f, nil
	case "xls", "xlsm":
		return FormatXLSX, nil
	case "sqlite", "sqlite3", "db", "postgres":
		return FormatSQL, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, tag)
	}
}

// DetectFormat infers the format from a path or database URL
func DetectFormat(path string) (Format, error) {
	if isPostgresURL(path) {
		return FormatSQL, nil
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: cannot infer format of %q", core.ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

func isPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// Reader loads a table from a Source
type Reader struct {
	source  Source
	coercer *coercer.TypeCoercer
	logger  *slog.Logger
}

// NewReader creates a reader for the source
func NewReader(source Source, coercerInstance *coercer.TypeCoercer, logger *slog.Logger) *Reader {
	if coercerInstance == nil {
		coercerInstance = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &Reader{source: source, coercer: coercerInstance, logger: logging.WithComponent(logger, "tableio")}
}

// Open reads a source with the default coercion rules
func Open(ctx context.Context, source Source) (*dataset.Table, error) {
	return NewReader(source, nil, nil).Read(ctx)
}

// Read loads the table
func (r *Reader) Read(ctx context.Context) (*dataset.Table, error) {
	if err := r.source.Validate(); err != nil {
		return nil, err
	}
	if r.source.Table != nil {
		return r.source.Table, nil
	}

	format, err := r.source.ResolveFormat()
	if err != nil {
		return nil, err
	}

	var table *dataset.Table
	switch format {
	case FormatCSV:
		table, err = r.readCSV()
	case FormatJSON:
		table, err = r.readJSON()
	case FormatXLSX:
		table, err = r.readXLSX()
	case FormatSQL:
		table, err = r.readSQL(ctx)
	default:
		err = fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("table loaded", "path", redact(r.source.Path), "format", format,
		"rows", table.RowCount(), "columns", table.ColumnCount())
	return table, nil
}

// redact hides credentials in database URLs
func redact(path string) string {
	if !isPostgresURL(path) {
		return path
	}
	at := strings.LastIndex(path, "@")
	scheme := strings.Index(path, "://")
	if at < 0 || scheme < 0 {
		return path
	}
	return path[:scheme+3] + "***" + path[at:]
}
