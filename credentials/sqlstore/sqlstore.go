package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-store-admin/credentials"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one stored token
type Entry struct {
	Key       string `gorm:"column:name;primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "credential_entries"
}

var _ credentials.Store = (*Store)(nil)

// Store keeps tokens in a SQL table through gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) a sqlite database at dsn and migrates the table.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("[sqlstore Open] dsn is required")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("[sqlstore Open] %w", err)
	}
	return New(db)
}

// New uses an existing gorm handle
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("[sqlstore New] database handle required")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("[sqlstore New] migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[sqlstore Get] %w", err)
	}
	return entry.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("[sqlstore Set] %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("[sqlstore Remove] %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
