package models

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// WatchedRow is a row of the watched table
type WatchedRow struct {
	MediaID              int64     `gorm:"primaryKey;autoIncrement:false"`
	MediaKind            MediaKind `gorm:"primaryKey;size:16"`
	Title                string    `gorm:"not null"`
	PosterPath           *string
	TrackedAtEpochMillis int64 `gorm:"not null;index"`
}

// TableName specifies the table name for GORM.
func (WatchedRow) TableName() string {
	return "watched"
}

// WatchlistRow is a row of the watchlist table
type WatchlistRow struct {
	MediaID              int64     `gorm:"primaryKey;autoIncrement:false"`
	MediaKind            MediaKind `gorm:"primaryKey;size:16"`
	Title                string    `gorm:"not null"`
	PosterPath           *string
	TrackedAtEpochMillis int64 `gorm:"not null;index"`
}

// TableName specifies the table name for GORM.
func (WatchlistRow) TableName() string {
	return "watchlist"
}

// SQLDatabase stores both tracking lists in SQLite through GORM
type SQLDatabase struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewSQLDatabase opens (or creates) the sqlite file and migrates both tables
func NewSQLDatabase(path string, logger *logrus.Logger) (*SQLDatabase, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open sqlite database %s: %w", path, err)}
	}

	if err := db.AutoMigrate(&WatchedRow{}, &WatchlistRow{}); err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to migrate schema: %w", err)}
	}

	return &SQLDatabase{db: db, logger: logger}, nil
}

// Close closes the underlying connection pool
func (s *SQLDatabase) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert inserts a row or refreshes title and poster of the existing one
func (s *SQLDatabase) Upsert(ctx context.Context, list List, rec TrackingRecord) error {
	row, err := sqlRow(list, rec)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "media_id"}, {Name: "media_kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "poster_path"}),
	}).Create(row).Error
}

// Delete removes a row, reporting whether it existed
func (s *SQLDatabase) Delete(ctx context.Context, list List, key Key) (bool, error) {
	model, err := sqlModel(list)
	if err != nil {
		return false, err
	}

	res := s.db.WithContext(ctx).
		Where("media_id = ? AND media_kind = ?", key.ID, key.Kind).
		Delete(model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the key is present in the list
func (s *SQLDatabase) Exists(ctx context.Context, list List, key Key) (bool, error) {
	model, err := sqlModel(list)
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(model).
		Where("media_id = ? AND media_kind = ?", key.ID, key.Kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves every record of the list, most recently tracked first
func (s *SQLDatabase) List(ctx context.Context, list List) ([]TrackingRecord, error) {
	query := s.db.WithContext(ctx).Order("tracked_at_epoch_millis DESC")

	var records []TrackingRecord
	switch list {
	case ListWatched:
		var rows []WatchedRow
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			records = append(records, TrackingRecord(r))
		}
	case ListWatchlist:
		var rows []WatchlistRow
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			records = append(records, TrackingRecord(r))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
	}

	SortRecords(records)
	return records, nil
}

func sqlModel(list List) (interface{}, error) {
	switch list {
	case ListWatched:
		return &WatchedRow{}, nil
	case ListWatchlist:
		return &WatchlistRow{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
}

func sqlRow(list List, rec TrackingRecord) (interface{}, error) {
	switch list {
	case ListWatched:
		row := WatchedRow(rec)
		return &row, nil
	case ListWatchlist:
		row := WatchlistRow(rec)
		return &row, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
}
