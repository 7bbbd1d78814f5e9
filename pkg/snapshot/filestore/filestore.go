// Package filestore keeps snapshots as files in one directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"summarizer-session-be/pkg/snapshot"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(handle string) string {
	return filepath.Join(s.dir, handle+".snap")
}

// Put writes to a temp file and hard-links it into place. The link fails when
// the handle exists, which makes the create atomic across processes.
func (s *Store) Put(ctx context.Context, handle string, blob []byte) error {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", handle, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot %s: %w", handle, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", handle, err)
	}

	err = os.Link(tmpName, s.path(handle))
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("publish snapshot %s: %w", handle, err)
	}

	existing, err := os.ReadFile(s.path(handle))
	if err != nil {
		return fmt.Errorf("read existing snapshot %s: %w", handle, err)
	}
	return snapshot.CompareExisting(handle, existing, blob)
}

func (s *Store) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(s.path(handle))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, snapshot.NotFound(handle)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", handle, err)
	}
	return blob, nil
}
