package controllers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/tracking"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingController(t *testing.T) (*TrackingController, *tracking.Store) {
	t.Helper()
	logger := utils.NewNopLogger()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "tracking.db"), time.Second, logger)
	require.NoError(t, err)

	store := tracking.New(db, logger)
	require.NoError(t, store.Load(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	c := NewTrackingController(store, logger)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c, store
}

func TestToggleWatchedAddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	c, store := newTrackingController(t)
	matrix := models.Movie{ID: 603, Title: "The Matrix"}

	watched, err := c.ToggleWatched(ctx, matrix)
	require.NoError(t, err)
	assert.True(t, watched)

	snapshot := store.Snapshot(models.ListWatched)
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(603), snapshot[0].MediaID)
	assert.Equal(t, models.MediaKindMovie, snapshot[0].MediaKind)
	assert.Equal(t, "The Matrix", snapshot[0].Title)
	assert.Equal(t, int64(1700000000000), snapshot[0].TrackedAtEpochMillis)

	watched, err = c.ToggleWatched(ctx, matrix)
	require.NoError(t, err)
	assert.False(t, watched)
	assert.Empty(t, store.Snapshot(models.ListWatched))
}

func TestToggleWatchlistIsIndependent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTrackingController(t)
	show := models.Series{ID: 1399, Name: "Game of Thrones"}

	_, err := c.ToggleWatchlist(ctx, show)
	require.NoError(t, err)

	m, err := c.Membership(ctx, show)
	require.NoError(t, err)
	assert.Equal(t, tracking.Membership{Watched: false, Watchlist: true}, m)
}

func TestToggleDistinguishesKinds(t *testing.T) {
	ctx := context.Background()
	c, store := newTrackingController(t)

	_, err := c.ToggleWatched(ctx, models.Movie{ID: 10, Title: "Movie Ten"})
	require.NoError(t, err)
	watched, err := c.ToggleWatched(ctx, models.Series{ID: 10, Name: "Series Ten"})
	require.NoError(t, err)
	assert.True(t, watched, "a series must not be mistaken for the movie with the same id")

	assert.Len(t, store.Snapshot(models.ListWatched), 2)
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	ctx := context.Background()
	c, store := newTrackingController(t)
	item := models.Movie{ID: 1, Title: "Flip"}

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = c.ToggleWatched(ctx, item)
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	assert.Empty(t, store.Snapshot(models.ListWatched), "an even number of toggles leaves the item untracked")
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	c, _ := newTrackingController(t)
	item := models.Series{ID: 5, Name: "Five"}

	_, err := c.ToggleWatchlist(ctx, item)
	require.NoError(t, err)
	require.NoError(t, c.Remove(ctx, models.ListWatchlist, models.KeyOf(item)))
	require.NoError(t, c.Remove(ctx, models.ListWatchlist, models.KeyOf(item)), "removing twice is not an error")

	records, err := c.List(models.ListWatchlist)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = c.List(models.List("favorites"))
	assert.ErrorIs(t, err, models.ErrInvalidList)
}

func TestToggleOnClosedStoreReturnsStorageError(t *testing.T) {
	c, store := newTrackingController(t)
	require.NoError(t, store.Close())

	_, err := c.ToggleWatched(context.Background(), models.Movie{ID: 1, Title: "x"})
	require.Error(t, err)
	assert.True(t, models.IsStorageError(err))
}
