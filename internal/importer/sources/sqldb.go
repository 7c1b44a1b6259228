package sources

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"chartdesk/internal/importer"
)

// ── SQL Database Source ─────────────────────────────────────
// Reads records from an external MySQL or PostgreSQL database by
// running a user-supplied query.

type sqlDBSource struct{}

func init() { importer.RegisterSource(&sqlDBSource{}) }

func (s *sqlDBSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "database",
		Label: "Database Query",
		ConfigFields: []importer.ConfigField{
			{Key: "driver", Label: "Driver", Type: "select", Required: true, Options: []string{"mysql", "postgres"}},
			{Key: "dsn", Label: "Connection String", Type: "password", Required: true, Help: "Driver-specific DSN"},
			{Key: "query", Label: "Query", Type: "textarea", Required: true, Help: "SELECT statement to import"},
		},
	}
}

func resolveSQLConfig(cfg importer.SourceConfig) (driver, dsn, query string, err error) {
	driver, _ = cfg["driver"].(string)
	dsn, _ = cfg["dsn"].(string)
	query, _ = cfg["query"].(string)

	if driver != "mysql" && driver != "postgres" {
		return "", "", "", fmt.Errorf("unsupported driver: %q", driver)
	}
	if dsn == "" || query == "" {
		return "", "", "", fmt.Errorf("dsn and query are required")
	}
	return driver, dsn, query, nil
}

func (s *sqlDBSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	driver, dsn, query, err := resolveSQLConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	schema := &importer.Schema{Fields: make([]importer.Field, len(cols))}
	for i, col := range cols {
		schema.Fields[i] = importer.Field{Name: col, Type: "text"}
	}
	return schema, nil
}

func (s *sqlDBSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		driver, dsn, query, err := resolveSQLConfig(cfg)
		if err != nil {
			errCh <- err
			return
		}

		db, err := sql.Open(driver, dsn)
		if err != nil {
			errCh <- fmt.Errorf("open %s: %w", driver, err)
			return
		}
		defer db.Close()

		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			errCh <- fmt.Errorf("query: %w", err)
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			errCh <- err
			return
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				errCh <- fmt.Errorf("scan: %w", err)
				return
			}

			data := make(map[string]any, len(cols))
			for i, col := range cols {
				data[col] = normalizeSQLValue(values[i])
			}

			select {
			case out <- importer.Record{Data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// normalizeSQLValue converts driver-specific scan results into the
// JSON-friendly types the rest of the pipeline expects.
func normalizeSQLValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return inferValue(string(t))
	case int64:
		return float64(t)
	default:
		return t
	}
}
