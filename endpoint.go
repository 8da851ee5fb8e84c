package main

import (
	"context"
	"fmt"

	"cachebench/bench"
	"cachebench/conf"
	"cachebench/lite"
	"cachebench/my"
	"cachebench/pg"
)

type endpoint interface {
	bench.QueryExecutor
	Close() error
}

func connect(cfg *conf.Conf, cc bench.ConnConfig) (endpoint, error) {
	switch cfg.Driver {
	case "postgres":
		return pg.Connect(cc, pg.Options{SSLMode: cfg.SSLMode, SimpleProtocol: cfg.SimpleProto})
	case "mysql":
		return my.Connect(cc)
	case "sqlite":
		return lite.Connect(cfg.SQLitePath)
	}
	return nil, fmt.Errorf("%w: database type %q not implemented", bench.ErrInvalidConfig, cfg.Driver)
}

func seedData(ctx context.Context, cfg *conf.Conf, exec bench.QueryExecutor) error {
	switch cfg.Driver {
	case "postgres":
		return pg.SeedData(ctx, exec, cfg.SeedRows)
	case "mysql":
		return my.SeedData(ctx, exec, cfg.SeedRows)
	case "sqlite":
		return lite.SeedData(ctx, exec, cfg.SeedRows)
	}
	return fmt.Errorf("%w: database type %q not implemented", bench.ErrInvalidConfig, cfg.Driver)
}

func hasEndpoint(cfg *conf.Conf, cc bench.ConnConfig) bool {
	return cfg.Driver == "sqlite" || cc.Host != ""
}
