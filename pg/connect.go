package pg

import (
	"context"
	"fmt"
	"time"

	"cachebench/bench"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Options struct {
	SSLMode string
	// SimpleProtocol disables pgx's implicit prepare on first execution,
	// which would otherwise make the cold run slower on both paths.
	SimpleProtocol bool
}

// Executor runs statements over a single pooled connection.
type Executor struct {
	pool *pgxpool.Pool
}

func Connect(c bench.ConnConfig, opts Options) (*Executor, error) {
	sslmode := opts.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 1
	config.MinConns = 1
	if opts.SimpleProtocol {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Executor{pool: pool}, nil
}

func (e *Executor) Execute(ctx context.Context, statement string) (bench.Rows, error) {
	rows, err := e.pool.Query(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out bench.Rows
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

func (e *Executor) Ping(ctx context.Context) error {
	return e.pool.Ping(ctx)
}

func (e *Executor) Close() error {
	e.pool.Close()
	return nil
}

func SeedData(ctx context.Context, exec bench.QueryExecutor, rows int) error {
	_, err := exec.Execute(ctx, `
		CREATE TABLE IF NOT EXISTS test_users (
			user_id SERIAL PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	res, err := exec.Execute(ctx, "SELECT COUNT(*) FROM test_users")
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	count := countOf(res)
	if count >= int64(rows) {
		fmt.Printf("  Data already seeded (%d rows)\n", count)
		return nil
	}

	fmt.Printf("  Seeding %d rows...\n", int64(rows)-count)
	_, err = exec.Execute(ctx, fmt.Sprintf(`
		INSERT INTO test_users (username, email)
		SELECT 'user_' || i, 'user' || i || '@example.com'
		FROM generate_series(%d, %d) i
	`, count+1, rows))
	return err
}

func countOf(r bench.Rows) int64 {
	if len(r) == 0 || len(r[0]) == 0 {
		return 0
	}
	switch v := r[0][0].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	}
	return 0
}
