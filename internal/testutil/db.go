// Package testutil opens migrated SQLite databases for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/field-service/pkg/database"
)

// NewDB opens a fresh migrated database under t.TempDir and closes it on cleanup
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
		BusyTimeout:  5 * time.Second,
	}, logger)
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(db, logger).Up(context.Background()))

	t.Cleanup(func() { _ = db.Close() })
	return db
}
