// Package tracking owns the watched and watchlist membership of media items
// and pushes a fresh snapshot of a list to subscribers after every change.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/pubsub"
	"github.com/sirupsen/logrus"
)

// Backend persists tracking records. Implementations must serialize writes.
type Backend interface {
	Upsert(ctx context.Context, list models.List, rec models.TrackingRecord) error
	Delete(ctx context.Context, list models.List, key models.Key) (bool, error)
	Exists(ctx context.Context, list models.List, key models.Key) (bool, error)
	List(ctx context.Context, list models.List) ([]models.TrackingRecord, error)
	Close() error
}

// Membership reports in which lists an item is tracked
type Membership struct {
	Watched   bool `json:"watched"`
	Watchlist bool `json:"watchlist"`
}

type table struct {
	mu      sync.Mutex // held across commit, re-read and publish
	subject *pubsub.Subject[[]models.TrackingRecord]
}

// Store is the tracking store
type Store struct {
	backend Backend
	tables  map[models.List]*table
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// Option configures a Store
type Option func(*Store)

// WithMetrics records mutations and list sizes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a store over backend. Nothing is read until Load.
func New(backend Backend, logger *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		tables:  make(map[models.List]*table, len(models.Lists)),
		logger:  logger,
	}
	for _, list := range models.Lists {
		s.tables[list] = &table{subject: pubsub.NewSubject([]models.TrackingRecord{})}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads both lists and publishes them as the initial snapshots
func (s *Store) Load(ctx context.Context) error {
	for _, list := range models.Lists {
		t := s.tables[list]
		t.mu.Lock()
		err := s.refresh(ctx, list, t)
		t.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// Close ends every subscription and closes the backend
func (s *Store) Close() error {
	for _, t := range s.tables {
		t.subject.Close()
	}
	return s.backend.Close()
}

// Upsert inserts or replaces rec in list
func (s *Store) Upsert(ctx context.Context, list models.List, rec models.TrackingRecord) error {
	t, err := s.table(list)
	if err != nil {
		return err
	}
	key := rec.Key()
	if err := key.Validate(); err != nil {
		return &models.StorageError{Op: "validate", List: list, Key: key.String(), Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := s.backend.Upsert(ctx, list, rec); err != nil {
		s.observeFailure(list, "upsert")
		return &models.StorageError{Op: "upsert", List: list, Key: key.String(), Err: err}
	}
	s.observeMutation(list, "upsert")

	s.logger.WithFields(logrus.Fields{
		"list":  list,
		"key":   key.String(),
		"title": rec.Title,
	}).Debug("Tracking record upserted")

	// The write is committed; its snapshot must reach subscribers even if ctx is gone.
	return s.refresh(context.WithoutCancel(ctx), list, t)
}

// Remove deletes key from list. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, list models.List, key models.Key) error {
	t, err := s.table(list)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	deleted, err := s.backend.Delete(ctx, list, key)
	if err != nil {
		s.observeFailure(list, "delete")
		return &models.StorageError{Op: "delete", List: list, Key: key.String(), Err: err}
	}
	s.observeMutation(list, "delete")

	s.logger.WithFields(logrus.Fields{
		"list":    list,
		"key":     key.String(),
		"deleted": deleted,
	}).Debug("Tracking record removed")

	// Committed: publish regardless of ctx
	return s.refresh(context.WithoutCancel(ctx), list, t)
}

// Contains reports whether key is in list, reading the backend directly
func (s *Store) Contains(ctx context.Context, list models.List, key models.Key) (bool, error) {
	if _, err := s.table(list); err != nil {
		return false, err
	}
	ok, err := s.backend.Exists(ctx, list, key)
	if err != nil {
		s.observeFailure(list, "exists")
		return false, &models.StorageError{Op: "exists", List: list, Key: key.String(), Err: err}
	}
	return ok, nil
}

// Membership reports the membership of key in both lists
func (s *Store) Membership(ctx context.Context, key models.Key) (Membership, error) {
	watched, err := s.IsWatched(ctx, key)
	if err != nil {
		return Membership{}, err
	}
	watchlist, err := s.IsOnWatchlist(ctx, key)
	if err != nil {
		return Membership{}, err
	}
	return Membership{Watched: watched, Watchlist: watchlist}, nil
}

// Observe subscribes to snapshots of list, most recently tracked first
func (s *Store) Observe(ctx context.Context, list models.List) (<-chan []models.TrackingRecord, error) {
	t, err := s.table(list)
	if err != nil {
		return nil, err
	}
	return t.subject.Subscribe(ctx), nil
}

// Snapshot returns the latest published snapshot of list
func (s *Store) Snapshot(list models.List) []models.TrackingRecord {
	t, err := s.table(list)
	if err != nil {
		return nil
	}
	return t.subject.Value()
}

// UpsertWatched marks rec as watched
func (s *Store) UpsertWatched(ctx context.Context, rec models.TrackingRecord) error {
	return s.Upsert(ctx, models.ListWatched, rec)
}

// RemoveWatched unmarks key as watched
func (s *Store) RemoveWatched(ctx context.Context, key models.Key) error {
	return s.Remove(ctx, models.ListWatched, key)
}

// UpsertWatchlist puts rec on the watchlist
func (s *Store) UpsertWatchlist(ctx context.Context, rec models.TrackingRecord) error {
	return s.Upsert(ctx, models.ListWatchlist, rec)
}

// RemoveWatchlist takes key off the watchlist
func (s *Store) RemoveWatchlist(ctx context.Context, key models.Key) error {
	return s.Remove(ctx, models.ListWatchlist, key)
}

// IsWatched reports whether key is watched
func (s *Store) IsWatched(ctx context.Context, key models.Key) (bool, error) {
	return s.Contains(ctx, models.ListWatched, key)
}

// IsOnWatchlist reports whether key is on the watchlist
func (s *Store) IsOnWatchlist(ctx context.Context, key models.Key) (bool, error) {
	return s.Contains(ctx, models.ListWatchlist, key)
}

// ObserveWatched subscribes to watched snapshots
func (s *Store) ObserveWatched(ctx context.Context) <-chan []models.TrackingRecord {
	return s.tables[models.ListWatched].subject.Subscribe(ctx)
}

// ObserveWatchlist subscribes to watchlist snapshots
func (s *Store) ObserveWatchlist(ctx context.Context) <-chan []models.TrackingRecord {
	return s.tables[models.ListWatchlist].subject.Subscribe(ctx)
}

// refresh re-reads list and publishes it. Callers hold t.mu.
func (s *Store) refresh(ctx context.Context, list models.List, t *table) error {
	records, err := s.backend.List(ctx, list)
	if err != nil {
		s.observeFailure(list, "list")
		return &models.StorageError{Op: "list", List: list, Err: err}
	}
	if records == nil {
		records = []models.TrackingRecord{}
	}
	t.subject.Publish(records)

	if s.metrics != nil {
		s.metrics.TrackedItems.WithLabelValues(string(list)).Set(float64(len(records)))
	}
	return nil
}

func (s *Store) table(list models.List) (*table, error) {
	t, ok := s.tables[list]
	if !ok {
		return nil, &models.StorageError{Op: "validate", List: list, Err: fmt.Errorf("%w: %q", models.ErrInvalidList, list)}
	}
	return t, nil
}

func (s *Store) observeMutation(list models.List, op string) {
	if s.metrics != nil {
		s.metrics.TrackingMutations.WithLabelValues(string(list), op, "ok").Inc()
	}
}

func (s *Store) observeFailure(list models.List, op string) {
	if s.metrics != nil {
		s.metrics.TrackingMutations.WithLabelValues(string(list), op, "error").Inc()
	}
}

// IsInvalid reports whether err was caused by an invalid record, key or list
func IsInvalid(err error) bool {
	return errors.Is(err, models.ErrInvalidRecord) || errors.Is(err, models.ErrInvalidList) || errors.Is(err, models.ErrInvalidKind)
}
