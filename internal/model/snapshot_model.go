package model

import "time"

type Snapshot struct {
	Handle    string    `gorm:"type:varchar(512);primaryKey"`
	Digest    string    `gorm:"type:char(64);not null"`
	Size      int64     `gorm:"not null"`
	Blob      []byte    `gorm:"type:bytea;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}
