package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/crichub/auction-backend/internal/types"
)

// roomRow is the persisted shape: one JSON blob per room code.
type roomRow struct {
	Code      string `gorm:"primaryKey;size:8"`
	Data      []byte `gorm:"type:jsonb"`
	Ended     bool
	UpdatedAt time.Time
}

func (roomRow) TableName() string { return "room_snapshots" }

// GormStore persists snapshots to Postgres via gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and migrates the snapshot table.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&roomRow{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Save(ctx context.Context, code string, snap *types.RoomSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	row := roomRow{Code: code, Data: data, Ended: snap.AuctionEnded, UpdatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "ended", "updated_at"}),
	}).Create(&row).Error
}

func (g *GormStore) Load(ctx context.Context, code string) (*types.RoomSnapshot, error) {
	var row roomRow
	err := g.db.WithContext(ctx).First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap types.RoomSnapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (g *GormStore) Delete(ctx context.Context, code string) error {
	return g.db.WithContext(ctx).Delete(&roomRow{}, "code = ?", code).Error
}
