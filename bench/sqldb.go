package bench

import (
	"context"
	"database/sql"
	"fmt"
)

// DBExecutor runs statements through database/sql. Drivers register
// themselves in their own packages (my, lite).
type DBExecutor struct {
	DB *sql.DB
}

func (e *DBExecutor) Execute(ctx context.Context, statement string) (Rows, error) {
	rows, err := e.DB.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	var out Rows
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

func (e *DBExecutor) Ping(ctx context.Context) error {
	return e.DB.PingContext(ctx)
}

func (e *DBExecutor) Close() error {
	return e.DB.Close()
}
