package filestore

import (
	"testing"

	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/snapshottest"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	snapshottest.Run(t, func(t *testing.T) snapshot.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}
