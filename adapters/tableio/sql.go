package tableio

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

// DriverFor picks the database/sql driver for a path: postgres URLs use lib/pq,
// anything else is opened as a SQLite file
func DriverFor(path string) string {
	if isPostgresURL(path) {
		return "postgres"
	}
	return "sqlite"
}

// readSQL runs the source query and loads the result set
func (r *Reader) readSQL(ctx context.Context) (*dataset.Table, error) {
	if r.source.Query == "" {
		return nil, fmt.Errorf("%w: sql source needs a query", core.ErrConfiguration)
	}

	db, err := sqlx.ConnectContext(ctx, DriverFor(r.source.Path), r.source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", redact(r.source.Path), err)
	}
	defer db.Close()

	return newTableBuilder(r.coercer).query(ctx, db, r.source.Query)
}

// query loads the rows of a query into a table
func (b *tableBuilder) query(ctx context.Context, db *sqlx.DB, query string) (*dataset.Table, error) {
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	if err := b.setHeader(columns); err != nil {
		return nil, err
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := b.newRow()
		for i, v := range values {
			b.set(row, i, b.native(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return b.build()
}
