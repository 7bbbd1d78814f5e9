package dbstore

import (
	"os"
	"testing"

	"summarizer-session-be/internal/model"
	"summarizer-session-be/pkg/database"
	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/snapshottest"

	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when SNAPSHOT_TEST_DSN is set.
func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("SNAPSHOT_TEST_DSN")
	if dsn == "" {
		t.Skip("SNAPSHOT_TEST_DSN not set")
	}
	db, err := database.NewGormDBFromDSN(dsn, database.WithSilentLogger())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Snapshot{}))

	snapshottest.Run(t, func(t *testing.T) snapshot.Store {
		require.NoError(t, db.Exec("DELETE FROM snapshots").Error)
		return New(db)
	})
}
