package runner

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLRunner executes generated SQL through database/sql and returns the
// result set as a Table. It works against any driver; the demo app uses
// sqlite, tests use sqlmock.
type SQLRunner struct {
	db      *sql.DB
	maxRows int
}

// SQLOption configures a SQLRunner.
type SQLOption func(*SQLRunner)

// WithMaxRows truncates result sets to n rows. Zero means unlimited.
func WithMaxRows(n int) SQLOption {
	return func(r *SQLRunner) { r.maxRows = n }
}

// NewSQLRunner wraps an open connection pool. The pool is owned by the
// caller; the runner never closes it.
func NewSQLRunner(db *sql.DB, opts ...SQLOption) *SQLRunner {
	r := &SQLRunner{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one SQL statement. The handle, when non-nil, must be a
// *sql.DB and overrides the runner's default pool, letting one runner
// serve workflows bound to different databases.
func (r *SQLRunner) Run(ctx context.Context, code string, handle any) (any, error) {
	db := r.db
	if handle != nil {
		override, ok := handle.(*sql.DB)
		if !ok {
			return nil, fmt.Errorf("sql runner: data handle is %T, want *sql.DB", handle)
		}
		db = override
	}
	if db == nil {
		return nil, fmt.Errorf("sql runner: no database connection")
	}
	query := strings.TrimSpace(code)
	if query == "" {
		return nil, fmt.Errorf("sql runner: empty query")
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sql runner: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql runner: read columns: %w", err)
	}

	table := Table{Columns: cols}
	for rows.Next() {
		if r.maxRows > 0 && len(table.Rows) >= r.maxRows {
			break
		}
		values := make([]any, len(cols))
		scan := make([]any, len(cols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("sql runner: scan row: %w", err)
		}
		for i, v := range values {
			// Drivers hand back []byte for text columns; keep results
			// printable and JSON-friendly.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql runner: %w", err)
	}
	return table, nil
}
