package my

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cachebench/bench"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(c bench.ConnConfig) (*bench.DBExecutor, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true&allowCleartextPasswords=true&timeout=30s",
		c.User, c.Password, c.Host, c.Port, c.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &bench.DBExecutor{DB: db}, nil
}

func SeedData(ctx context.Context, exec bench.QueryExecutor, rows int) error {
	// DDL is usually blocked by proxies, so this only runs on direct connections
	_, err := exec.Execute(ctx, `
		CREATE TABLE IF NOT EXISTS test_users (
			user_id INT AUTO_INCREMENT PRIMARY KEY,
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
	if count >= rows {
		fmt.Printf("  Data already seeded (%d rows)\n", count)
		return nil
	}

	fmt.Printf("  Seeding %d rows...\n", rows-count)

	// Batch insert 500 at a time
	batchSize := 500
	for i := count; i < rows; i += batchSize {
		end := i + batchSize
		if end > rows {
			end = rows
		}

		var sb strings.Builder
		sb.WriteString("INSERT INTO test_users (username, email) VALUES ")
		for j := i; j < end; j++ {
			if j > i {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "('user_%d','user%d@example.com')", j+1, j+1)
		}

		if _, err := exec.Execute(ctx, sb.String()); err != nil {
			return fmt.Errorf("seed batch at %d: %w", i, err)
		}
	}
	return nil
}

func countOf(r bench.Rows) int {
	if len(r) == 0 || len(r[0]) == 0 {
		return 0
	}
	switch v := r[0][0].(type) {
	case int64:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	}
	return 0
}
