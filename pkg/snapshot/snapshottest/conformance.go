// Package snapshottest holds the behaviour every snapshot.Store backend must share.
package snapshottest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/pkg/snapshot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, newStore func(t *testing.T) snapshot.Store) {
	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		handle := snapshot.TemplateHandle(uuid.New())

		require.NoError(t, s.Put(ctx, handle, []byte("state-0")))
		blob, err := s.Get(ctx, handle)
		require.NoError(t, err)
		assert.Equal(t, []byte("state-0"), blob)
	})

	t.Run("missing handle is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "never-written")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("same bytes twice is a no-op", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "h-1", []byte("abc")))
		require.NoError(t, s.Put(ctx, "h-1", []byte("abc")))
	})

	t.Run("different bytes are rejected and the original kept", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "h-2", []byte("first")))

		err := s.Put(ctx, "h-2", []byte("second"))
		assert.ErrorIs(t, err, snapshot.ErrSnapshotExists)

		blob, err := s.Get(ctx, "h-2")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), blob)
	})

	t.Run("rejects unsafe handles", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Put(context.Background(), "../escape", []byte("x")))
	})

	t.Run("concurrent writers of different bytes leave exactly one winner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		var mu sync.Mutex
		wins, conflicts := 0, 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := s.Put(ctx, "contended", []byte{byte(i)})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, snapshot.ErrSnapshotExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
		assert.Equal(t, 7, conflicts)
	})
}
