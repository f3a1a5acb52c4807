package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunnerIsIdempotent(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner()
	assert.Equal(t, "1.0.0", runner.Version())

	ctx := context.Background()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cleaning_artifacts`))
	assert.Equal(t, 0, count)
}
