package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/db"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands never open a database connection.
var offline = map[string]func(options) error{
	"create": func(o options) error {
		if o.name == "" {
			return errors.New("missing -name for create")
		}
		return migrate.Create(o.dir, o.name)
	},
	"validate": func(options) error {
		if err := migrate.Validate(); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	},
}

var online = map[string]func(context.Context, *sql.DB, options) error{
	"up":     func(ctx context.Context, d *sql.DB, _ options) error { return migrate.Run(ctx, d, "up") },
	"down":   func(ctx context.Context, d *sql.DB, _ options) error { return migrate.Run(ctx, d, "down") },
	"status": func(ctx context.Context, d *sql.DB, _ options) error { return migrate.Run(ctx, d, "status") },
	"version": func(ctx context.Context, d *sql.DB, o options) error {
		if o.version == "" {
			return errors.New("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, d, o.version)
	},
}

func main() {
	var o options
	flag.StringVar(&o.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&o.dir, "dir", migrate.DefaultDir, "directory new migrations are written to (create only)")
	flag.StringVar(&o.name, "name", "", "migration name (create only)")
	flag.StringVar(&o.version, "version", "", "target version YYYYMMDDHHMMSS (version only)")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", o.cmd, err)
		os.Exit(1)
	}
}

func run(o options) error {
	if fn, ok := offline[o.cmd]; ok {
		return fn(o)
	}
	fn, ok := online[o.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd value %q", o.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": o.cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer client.Close()
	if client.Driver() != db.DriverPostgres {
		return fmt.Errorf("goose migrations require postgres, got %s", client.Driver())
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}
	logg.Info(ctx, "migrate ready")
	return fn(ctx, sqlDB, o)
}
