package conf

import (
	"fmt"
	"os"
	"strings"

	"cachebench/bench"

	"gopkg.in/yaml.v2"
)

type queryFile struct {
	Queries []queryEntry `yaml:"queries"`
}

type queryEntry struct {
	Name       string `yaml:"name"`
	Body       string `yaml:"body"`
	Diagnostic string `yaml:"diagnostic"`
	Mutation   string `yaml:"mutation"`
	Restore    string `yaml:"restore"`
}

// LoadQueries reads an ordered query set from a YAML file.
func LoadQueries(path string) ([]bench.Query, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load queries: %w", err)
	}
	return ParseQueries(raw)
}

func ParseQueries(raw []byte) ([]bench.Query, error) {
	var f queryFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: cannot parse queries: %w", bench.ErrInvalidConfig, err)
	}
	if len(f.Queries) == 0 {
		return nil, fmt.Errorf("%w: query set is empty", bench.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(f.Queries))
	queries := make([]bench.Query, 0, len(f.Queries))
	for i, e := range f.Queries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: query #%d has no name", bench.ErrInvalidConfig, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate query name %q", bench.ErrInvalidConfig, name)
		}
		seen[name] = true
		if strings.TrimSpace(e.Body) == "" {
			return nil, fmt.Errorf("%w: query %q has no body", bench.ErrInvalidConfig, name)
		}
		queries = append(queries, bench.Query{
			Name:       name,
			Body:       strings.TrimSpace(e.Body),
			Diagnostic: strings.TrimSpace(e.Diagnostic),
			Mutation:   strings.TrimSpace(e.Mutation),
			Restore:    strings.TrimSpace(e.Restore),
		})
	}
	return queries, nil
}

// explainPrefix never executes the statement (no ANALYZE) so the first
// timed trial stays cold.
func explainPrefix(driver string) string {
	if driver == "sqlite" {
		return "EXPLAIN QUERY PLAN "
	}
	return "EXPLAIN "
}

// DefaultQueries is the built-in query set over the seeded test_users table.
func DefaultQueries(driver string) []bench.Query {
	bodies := []struct {
		name string
		body string
	}{
		{"single_row", "SELECT user_id, username, email FROM test_users ORDER BY user_id LIMIT 1"},
		{"point_lookup", "SELECT user_id, username, email FROM test_users WHERE user_id = 42"},
		{"range_scan", "SELECT user_id, username, email FROM test_users WHERE user_id BETWEEN 100 AND 300"},
		{"ordered_page", "SELECT user_id, username FROM test_users ORDER BY username DESC LIMIT 50"},
		{"aggregate", "SELECT COUNT(*), MAX(user_id) FROM test_users WHERE email LIKE '%@example.com'"},
	}
	prefix := explainPrefix(driver)
	queries := make([]bench.Query, 0, len(bodies))
	for _, b := range bodies {
		queries = append(queries, bench.Query{
			Name:       b.name,
			Body:       b.body,
			Diagnostic: prefix + b.body,
		})
	}
	queries[0].Mutation = "UPDATE test_users SET email = 'probe@example.com' WHERE user_id = 1"
	queries[0].Restore = "UPDATE test_users SET email = 'user1@example.com' WHERE user_id = 1"
	return queries
}
