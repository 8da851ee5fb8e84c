// Package lite runs the benchmark against a local SQLite database. It is
// meant for dry runs of a query set without a server.
package lite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cachebench/bench"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// Connect opens the database at path. ":memory:" gives a private
// in-memory database.
func Connect(path string) (*bench.DBExecutor, error) {
	dir := filepath.Dir(path)
	if path != ":memory:" && dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives on its connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	return &bench.DBExecutor{DB: db}, nil
}

func SeedData(ctx context.Context, exec bench.QueryExecutor, rows int) error {
	_, err := exec.Execute(ctx, `
		CREATE TABLE IF NOT EXISTS test_users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	res, err := exec.Execute(ctx, "SELECT COUNT(*) FROM test_users")
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	var count int64
	if len(res) > 0 && len(res[0]) > 0 {
		count, _ = res[0][0].(int64)
	}
	if count >= int64(rows) {
		return nil
	}

	_, err = exec.Execute(ctx, fmt.Sprintf(`
		WITH RECURSIVE seq(i) AS (
			SELECT %d UNION ALL SELECT i + 1 FROM seq WHERE i < %d
		)
		INSERT INTO test_users (username, email)
		SELECT 'user_' || i, 'user' || i || '@example.com' FROM seq
	`, count+1, rows))
	if err != nil {
		return fmt.Errorf("seed insert: %w", err)
	}
	return nil
}
