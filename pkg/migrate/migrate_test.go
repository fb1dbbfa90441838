package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const validBody = "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n"

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateFSCollectsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101000000_ok.sql":         {Data: []byte(validBody)},
		"20260101000000_dup.sql":        {Data: []byte(validBody)},
		"bad-name.sql":                  {Data: []byte(validBody)},
		"20260102000000_no_down.sql":    {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"20260103000000_unbalanced.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n")},
		"README.md":                     {Data: []byte("ignored")},
	}

	err := ValidateFS(fsys)
	require.Error(t, err)
	problems := multierr.Errors(err)
	assert.Len(t, problems, 4)
	assert.Contains(t, err.Error(), "version already used")
	assert.Contains(t, err.Error(), "bad-name.sql")
	assert.Contains(t, err.Error(), `missing "-- +goose Down"`)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestValidateFSEmpty(t *testing.T) {
	assert.Error(t, ValidateFS(fstest.MapFS{}))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_oven_zones", SanitizeName("  Add oven zones! "))
	assert.Equal(t, "ral_9010_stock", SanitizeName("RAL-9010 stock"))
	assert.Equal(t, "", SanitizeName("!!!"))
}

func TestCreateAtBumpsPastNewestVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	first, err := createAt(dir, "add powder lots", now)
	require.NoError(t, err)
	assert.Equal(t, "20260304050607_add_powder_lots.sql", filepath.Base(first))

	second, err := createAt(dir, "add powder lots index", now)
	require.NoError(t, err)
	assert.Equal(t, "20260304050608_add_powder_lots_index.sql", filepath.Base(second))

	body, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"))
	require.NoError(t, ValidateDir(dir))

	_, err = createAt(dir, "***", now)
	assert.Error(t, err)
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := Run(context.Background(), nil, "", "up")
	require.Error(t, err)

	_, err = MigrateToVersion(context.Background(), nil, "", "2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYYMMDDHHMMSS")
}

func TestSourceEmbedsMigrationsAtRoot(t *testing.T) {
	fsys, err := Source("")
	require.NoError(t, err)
	assert.NotEmpty(t, latestVersion(fsys))
}
