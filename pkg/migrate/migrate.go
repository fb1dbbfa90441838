package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where the CLI writes new migrations.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

var ErrUnknownCommand = errors.New("unknown migrate command")

// Source returns the migration files: the embedded set, or dir on disk when set.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return sub, nil
}

func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("migrate: db is required")
	}
	fsys, err := Source(dir)
	if err != nil {
		return nil, err
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// Run executes up, down or status and returns one human readable line per
// migration touched.
func Run(ctx context.Context, db *sql.DB, dir, command string) ([]string, error) {
	p, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	switch command {
	case "up":
		results, err := p.Up(ctx)
		return describe(results), wrap("up", err)
	case "down":
		result, err := p.Down(ctx)
		if result == nil {
			return nil, wrap("down", err)
		}
		return describe([]*goose.MigrationResult{result}), wrap("down", err)
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil {
			return nil, wrap("status", err)
		}
		lines := make([]string, 0, len(statuses))
		for _, s := range statuses {
			line := fmt.Sprintf("%-8s %s", s.State, s.Source.Path)
			if !s.AppliedAt.IsZero() {
				line += "  (" + s.AppliedAt.UTC().Format("2006-01-02 15:04:05") + ")"
			}
			lines = append(lines, line)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

// MigrateToVersion moves the schema up or down until it sits at version
// (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, version string) ([]string, error) {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil || len(version) != 14 {
		return nil, fmt.Errorf("invalid version %q, want YYYYMMDDHHMMSS", version)
	}
	p, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	current, err := p.GetDBVersion(ctx)
	if err != nil {
		return nil, wrap("version", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = p.UpTo(ctx, target)
	default:
		results, err = p.DownTo(ctx, target)
	}
	return describe(results), wrap(fmt.Sprintf("to %d", target), err)
}

func describe(results []*goose.MigrationResult) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-4s %s (%s)", r.Direction, r.Source.Path, r.Duration.Round(time.Millisecond)))
	}
	return lines
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", op, err)
}
