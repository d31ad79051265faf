package tracking

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend is an in-memory Backend with failure injection
type memBackend struct {
	mu      sync.Mutex
	rows    map[models.List]map[models.Key]models.TrackingRecord
	failAll error
	closed  bool
}

func newMemBackend() *memBackend {
	return &memBackend{rows: map[models.List]map[models.Key]models.TrackingRecord{
		models.ListWatched:   {},
		models.ListWatchlist: {},
	}}
}

func (m *memBackend) Upsert(_ context.Context, list models.List, rec models.TrackingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if prev, ok := m.rows[list][rec.Key()]; ok {
		rec.TrackedAtEpochMillis = prev.TrackedAtEpochMillis
	}
	m.rows[list][rec.Key()] = rec
	return nil
}

func (m *memBackend) Delete(_ context.Context, list models.List, key models.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.rows[list][key]
	delete(m.rows[list], key)
	return ok, nil
}

func (m *memBackend) Exists(_ context.Context, list models.List, key models.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	_, ok := m.rows[list][key]
	return ok, nil
}

func (m *memBackend) List(_ context.Context, list models.List) ([]models.TrackingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := make([]models.TrackingRecord, 0, len(m.rows[list]))
	for _, rec := range m.rows[list] {
		out = append(out, rec)
	}
	models.SortRecords(out)
	return out, nil
}

func (m *memBackend) Close() error {
	m.closed = true
	return nil
}

func newTestStore(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	backend := newMemBackend()
	store := New(backend, utils.NewNopLogger())
	require.NoError(t, store.Load(context.Background()))
	return store, backend
}

func record(id int64, kind models.MediaKind, title string, at int64) models.TrackingRecord {
	return models.TrackingRecord{MediaID: id, MediaKind: kind, Title: title, TrackedAtEpochMillis: at}
}

func next(t *testing.T, ch <-chan []models.TrackingRecord) []models.TrackingRecord {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "snapshot channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestUpsertThenContains(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	rec := record(603, models.MediaKindMovie, "The Matrix", 1)

	require.NoError(t, store.UpsertWatched(ctx, rec))

	ok, err := store.IsWatched(ctx, rec.Key())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsOnWatchlist(ctx, rec.Key())
	require.NoError(t, err)
	assert.False(t, ok, "lists are independent")
}

func TestRemoveAbsentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.RemoveWatchlist(ctx, models.Key{ID: 42, Kind: models.MediaKindTV}))
	assert.Empty(t, store.Snapshot(models.ListWatchlist))
}

func TestUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.UpsertWatchlist(ctx, record(1, models.MediaKindMovie, "A", 10)))
	require.NoError(t, store.UpsertWatchlist(ctx, record(1, models.MediaKindMovie, "A", 20)))

	snapshot := store.Snapshot(models.ListWatchlist)
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(10), snapshot[0].TrackedAtEpochMillis)
}

func TestSameIDDifferentKind(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	movie := record(10, models.MediaKindMovie, "Movie Ten", 1)
	series := record(10, models.MediaKindTV, "Series Ten", 2)
	require.NoError(t, store.UpsertWatched(ctx, movie))
	require.NoError(t, store.UpsertWatched(ctx, series))

	assert.Len(t, store.Snapshot(models.ListWatched), 2)

	require.NoError(t, store.RemoveWatched(ctx, movie.Key()))
	ok, err := store.IsWatched(ctx, series.Key())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestObserveEmitsSortedSnapshotAfterEveryMutation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, _ := newTestStore(t)

	ch := store.ObserveWatched(ctx)
	assert.Empty(t, next(t, ch), "initial snapshot")

	require.NoError(t, store.UpsertWatched(ctx, record(1, models.MediaKindMovie, "Old", 100)))
	assert.Len(t, next(t, ch), 1)

	require.NoError(t, store.UpsertWatched(ctx, record(2, models.MediaKindTV, "New", 200)))
	snapshot := next(t, ch)
	require.Len(t, snapshot, 2)
	assert.Equal(t, int64(2), snapshot[0].MediaID, "most recently tracked first")
	assert.Equal(t, int64(1), snapshot[1].MediaID)

	require.NoError(t, store.RemoveWatched(ctx, models.Key{ID: 2, Kind: models.MediaKindTV}))
	snapshot = next(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(1), snapshot[0].MediaID)
}

func TestObserveUnknownList(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Observe(context.Background(), models.List("favorites"))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestUpsertRejectsInvalidKey(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	err := store.UpsertWatched(ctx, record(-1, models.MediaKindMovie, "bad", 1))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.True(t, models.IsStorageError(err))

	err = store.UpsertWatched(ctx, record(1, models.MediaKind("book"), "bad", 1))
	assert.True(t, IsInvalid(err))
	assert.Empty(t, backend.rows[models.ListWatched])
}

func TestBackendFailureSurfacesAsStorageError(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	diskErr := errors.New("disk full")
	backend.failAll = diskErr

	err := store.UpsertWatched(ctx, record(1, models.MediaKindMovie, "A", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)

	var se *models.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "upsert", se.Op)
	assert.Equal(t, models.ListWatched, se.List)

	_, err = store.IsWatched(ctx, models.Key{ID: 1, Kind: models.MediaKindMovie})
	assert.True(t, models.IsStorageError(err))

	err = store.RemoveWatchlist(ctx, models.Key{ID: 1, Kind: models.MediaKindMovie})
	assert.True(t, models.IsStorageError(err))
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	rec := record(7, models.MediaKindTV, "Show", 1)

	require.NoError(t, store.UpsertWatchlist(ctx, rec))

	m, err := store.Membership(ctx, rec.Key())
	require.NoError(t, err)
	assert.Equal(t, Membership{Watched: false, Watchlist: true}, m)
}

func TestMetricsAreRecorded(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	store := New(newMemBackend(), utils.NewNopLogger(), WithMetrics(m))
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.UpsertWatched(ctx, record(1, models.MediaKindMovie, "A", 1)))
	require.NoError(t, store.UpsertWatched(ctx, record(2, models.MediaKindMovie, "B", 2)))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrackedItems.WithLabelValues("watched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrackingMutations.WithLabelValues("watched", "upsert", "ok")))
}

func TestCloseEndsObservers(t *testing.T) {
	store, backend := newTestStore(t)
	ch := store.ObserveWatchlist(context.Background())
	next(t, ch)

	require.NoError(t, store.Close())
	assert.True(t, backend.closed)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestStoreOverBolt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracking.db")

	db, err := models.NewDatabase(path, time.Second, utils.NewNopLogger())
	require.NoError(t, err)
	store := New(db, utils.NewNopLogger())
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.UpsertWatched(ctx, record(603, models.MediaKindMovie, "The Matrix", 1)))
	require.NoError(t, store.Close())

	db, err = models.NewDatabase(path, time.Second, utils.NewNopLogger())
	require.NoError(t, err)
	reopened := New(db, utils.NewNopLogger())
	defer reopened.Close()
	require.NoError(t, reopened.Load(ctx))

	snapshot := reopened.Snapshot(models.ListWatched)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "The Matrix", snapshot[0].Title)
}

// cancelAfterCommit cancels the caller's context as soon as a write commits,
// and fails reads on a cancelled context like a real backend does
type cancelAfterCommit struct {
	*memBackend
	cancel context.CancelFunc
}

func (b *cancelAfterCommit) Upsert(ctx context.Context, list models.List, rec models.TrackingRecord) error {
	err := b.memBackend.Upsert(ctx, list, rec)
	b.cancel()
	return err
}

func (b *cancelAfterCommit) Delete(ctx context.Context, list models.List, key models.Key) (bool, error) {
	deleted, err := b.memBackend.Delete(ctx, list, key)
	b.cancel()
	return deleted, err
}

func (b *cancelAfterCommit) List(ctx context.Context, list models.List) ([]models.TrackingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.memBackend.List(ctx, list)
}

func TestCommittedWritePublishesAfterCallerCancels(t *testing.T) {
	backend := &cancelAfterCommit{memBackend: newMemBackend(), cancel: func() {}}
	store := New(backend, utils.NewNopLogger())
	require.NoError(t, store.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	backend.cancel = cancel
	rec := record(603, models.MediaKindMovie, "The Matrix", 1)

	require.NoError(t, store.UpsertWatched(ctx, rec))
	require.Len(t, store.Snapshot(models.ListWatched), 1)

	ctx, cancel = context.WithCancel(context.Background())
	backend.cancel = cancel
	require.NoError(t, store.RemoveWatched(ctx, rec.Key()))
	assert.Empty(t, store.Snapshot(models.ListWatched))
}
