package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/instance"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	flag.StringVar(&opts.name, "name", "", "migration name, for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS, for -cmd=version")
	flag.Parse()

	_ = godotenv.Load()

	// file-only commands run without config or a database
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			fail("missing -name for create")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			fail("create: %v", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		var err error
		if opts.dir == "" {
			err = migrate.ValidateEmbedded()
		} else {
			err = migrate.ValidateDir(opts.dir)
		}
		if err != nil {
			fail("validation failed:\n%v", err)
		}
		fmt.Println("migrations ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Fields:      map[string]any{"env": cfg.App.Env, "instance": instance.ID()},
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": opts.cmd, "dir": opts.dir})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	lines, err := execute(ctx, dbClient, opts)
	for _, line := range lines {
		fmt.Println(line)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "changes", len(lines)), "migrate.done")
}

func execute(ctx context.Context, client *db.Client, opts options) ([]string, error) {
	// the SQL files use Postgres features (RLS, enums); sqlite gets the model schema
	if client.Driver() == db.DriverSQLite {
		if opts.cmd != "up" {
			return nil, fmt.Errorf("-cmd=%s is not supported on sqlite", opts.cmd)
		}
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		return []string{"sqlite schema migrated from models"}, nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return nil, err
	}
	if opts.cmd == "version" {
		if opts.version == "" {
			return nil, fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "migrate: "+format+"\n", args...)
	os.Exit(1)
}
