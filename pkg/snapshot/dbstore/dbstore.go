// Package dbstore keeps snapshots in the snapshots table next to the session data.
package dbstore

import (
	"context"
	"errors"
	"fmt"

	"summarizer-session-be/internal/model"
	"summarizer-session-be/pkg/snapshot"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Put(ctx context.Context, handle string, blob []byte) error {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return err
	}
	digest := snapshot.Digest(blob)
	row := &model.Snapshot{
		Handle: handle,
		Digest: digest,
		Size:   int64(len(blob)),
		Blob:   blob,
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "handle"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return fmt.Errorf("insert snapshot %s: %w", handle, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var existing model.Snapshot
	if err := s.db.WithContext(ctx).Select("handle", "digest").Where("handle = ?", handle).First(&existing).Error; err != nil {
		return fmt.Errorf("read existing snapshot %s: %w", handle, err)
	}
	if existing.Digest == digest {
		return nil
	}
	return fmt.Errorf("%s: %w", handle, snapshot.ErrSnapshotExists)
}

func (s *Store) Get(ctx context.Context, handle string) ([]byte, error) {
	var row model.Snapshot
	if err := s.db.WithContext(ctx).Where("handle = ?", handle).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, snapshot.NotFound(handle)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", handle, err)
	}
	return row.Blob, nil
}
