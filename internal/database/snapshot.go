package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is one persisted key/value blob.
type Snapshot struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Payload   []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table created by the migrations.
func (Snapshot) TableName() string { return "snapshots" }

// SnapshotGateway stores engine snapshots in a single table, one row per key.
type SnapshotGateway struct {
	db *gorm.DB
}

// NewSnapshotGateway creates a gateway over db. The snapshots table must exist.
func NewSnapshotGateway(db *gorm.DB) *SnapshotGateway {
	return &SnapshotGateway{db: db}
}

// Read returns the payload stored under key.
func (g *SnapshotGateway) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var snap Snapshot
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap.Payload, true, nil
}

// Write upserts the payload under key.
func (g *SnapshotGateway) Write(ctx context.Context, key string, payload []byte) error {
	snap := Snapshot{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snap).Error
}
