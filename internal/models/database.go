package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// TrackingEntry is the stored form of a TrackingRecord.
// Key is "<kind>:<id>" so a movie and a series sharing an id never collide.
type TrackingEntry struct {
	Key                  string
	MediaID              int64
	MediaKind            MediaKind
	Title                string
	PosterPath           *string
	TrackedAtEpochMillis int64
}

// WatchedEntry is stored in the watched bucket
type WatchedEntry TrackingEntry

// WatchlistEntry is stored in the watchlist bucket
type WatchlistEntry TrackingEntry

// Database wraps the bolthold store holding both tracking lists
type Database struct {
	store  *bolthold.Store
	logger *logrus.Logger
}

// NewDatabase opens the bolt file, retrying while another process holds its lock
func NewDatabase(path string, openTimeout time.Duration, logger *logrus.Logger) (*Database, error) {
	var store *bolthold.Store

	open := func() error {
		s, err := bolthold.Open(path, 0600, &bolthold.Options{
			Options: &bbolt.Options{
				Timeout: 250 * time.Millisecond,
			},
		})
		if err != nil {
			if errors.Is(err, bbolt.ErrTimeout) {
				logger.WithField("path", path).Debug("Database file locked, retrying")
				return err
			}
			return backoff.Permanent(err)
		}
		store = s
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = openTimeout

	if err := backoff.Retry(open, policy); err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open database %s: %w", path, err)}
	}

	return &Database{store: store, logger: logger}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Upsert inserts or replaces a record, keeping the tracking time of an existing row
func (db *Database) Upsert(ctx context.Context, list List, rec TrackingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := rec.Key().String()

	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		existing, err := newEntry(list)
		if err != nil {
			return err
		}
		err = db.store.TxGet(tx, key, existing)
		switch {
		case err == nil:
			rec.TrackedAtEpochMillis = entryOf(existing).TrackedAtEpochMillis
		case errors.Is(err, bolthold.ErrNotFound):
		default:
			return err
		}

		row, err := toEntry(list, rec)
		if err != nil {
			return err
		}
		return db.store.TxUpsert(tx, key, row)
	})
}

// Delete removes a record, reporting whether a row existed
func (db *Database) Delete(ctx context.Context, list List, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deleted := false

	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		existing, err := newEntry(list)
		if err != nil {
			return err
		}
		if err := db.store.TxGet(tx, key.String(), existing); err != nil {
			if errors.Is(err, bolthold.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := db.store.TxDelete(tx, key.String(), existing); err != nil {
			return err
		}
		deleted = true
		return nil
	})

	return deleted, err
}

// Exists reports whether the key is present in the list
func (db *Database) Exists(ctx context.Context, list List, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	existing, err := newEntry(list)
	if err != nil {
		return false, err
	}

	err = db.store.Get(key.String(), existing)
	if errors.Is(err, bolthold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List retrieves every record of the list, most recently tracked first
func (db *Database) List(ctx context.Context, list List) ([]TrackingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []TrackingEntry
	switch list {
	case ListWatched:
		var rows []WatchedEntry
		if err := db.store.Find(&rows, nil); err != nil {
			return nil, err
		}
		for _, row := range rows {
			entries = append(entries, TrackingEntry(row))
		}
	case ListWatchlist:
		var rows []WatchlistEntry
		if err := db.store.Find(&rows, nil); err != nil {
			return nil, err
		}
		for _, row := range rows {
			entries = append(entries, TrackingEntry(row))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
	}

	records := make([]TrackingRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, TrackingRecord{
			MediaID:              e.MediaID,
			MediaKind:            e.MediaKind,
			Title:                e.Title,
			PosterPath:           e.PosterPath,
			TrackedAtEpochMillis: e.TrackedAtEpochMillis,
		})
	}
	SortRecords(records)
	return records, nil
}

// SortRecords orders records by tracking time descending, then by key
func SortRecords(records []TrackingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TrackedAtEpochMillis != records[j].TrackedAtEpochMillis {
			return records[i].TrackedAtEpochMillis > records[j].TrackedAtEpochMillis
		}
		return records[i].Key().String() < records[j].Key().String()
	})
}

func newEntry(list List) (interface{}, error) {
	switch list {
	case ListWatched:
		return &WatchedEntry{}, nil
	case ListWatchlist:
		return &WatchlistEntry{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
}

func entryOf(v interface{}) TrackingEntry {
	switch e := v.(type) {
	case *WatchedEntry:
		return TrackingEntry(*e)
	case *WatchlistEntry:
		return TrackingEntry(*e)
	}
	return TrackingEntry{}
}

func toEntry(list List, rec TrackingRecord) (interface{}, error) {
	entry := TrackingEntry{
		Key:                  rec.Key().String(),
		MediaID:              rec.MediaID,
		MediaKind:            rec.MediaKind,
		Title:                rec.Title,
		PosterPath:           rec.PosterPath,
		TrackedAtEpochMillis: rec.TrackedAtEpochMillis,
	}
	switch list {
	case ListWatched:
		row := WatchedEntry(entry)
		return &row, nil
	case ListWatchlist:
		row := WatchlistEntry(entry)
		return &row, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidList, list)
}
