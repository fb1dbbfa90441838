package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var fileNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Problem is one defect found in a migration file.
type Problem struct {
	File   string
	Reason string
}

func (p Problem) Error() string {
	return p.File + ": " + p.Reason
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	sub, err := Source("")
	if err != nil {
		return err
	}
	return ValidateFS(sub)
}

// ValidateDir checks the SQL files of a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS reports every naming and annotation problem at once rather
// than stopping at the first one.
func ValidateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := map[string]string{}
	var names []string
	var errs error
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, Problem{name, "expected YYYYMMDDHHMMSS_snake_name.sql"})
			continue
		}
		if prev, dup := versions[m[1]]; dup {
			errs = multierr.Append(errs, Problem{name, "version already used by " + prev})
			continue
		}
		versions[m[1]] = name
		names = append(names, name)

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = multierr.Append(errs, Problem{name, err.Error()})
			continue
		}
		for _, reason := range annotationProblems(string(body)) {
			errs = multierr.Append(errs, Problem{name, reason})
		}
	}
	if len(names) == 0 && errs == nil {
		return fmt.Errorf("no migrations found")
	}
	return errs
}

func annotationProblems(body string) []string {
	var out []string
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		out = append(out, `missing "-- +goose Up"`)
	case down < 0:
		out = append(out, `missing "-- +goose Down"`)
	case down < up:
		out = append(out, "Down section precedes Up")
	}
	if b, e := strings.Count(body, "-- +goose StatementBegin"), strings.Count(body, "-- +goose StatementEnd"); b != e {
		out = append(out, fmt.Sprintf("unbalanced StatementBegin/End (%d/%d)", b, e))
	}
	return out
}

// latestVersion returns the highest version in fsys, or "" when empty.
func latestVersion(fsys fs.FS) string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return ""
	}
	var versions []string
	for _, entry := range entries {
		if m := fileNameRe.FindStringSubmatch(entry.Name()); m != nil {
			versions = append(versions, m[1])
		}
	}
	if len(versions) == 0 {
		return ""
	}
	sort.Strings(versions)
	return versions[len(versions)-1]
}
