package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amaumene/gowatchlist/internal/controllers/mocks"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPopularRefreshPublishesBothLists(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPopularMovies(gomock.Any(), 1).Return(moviePage(models.Movie{ID: 1, Title: "One"}), nil)
	catalog.EXPECT().ListPopularSeries(gomock.Any(), 1).Return(seriesPage(models.Series{ID: 2, Name: "Two"}), nil)

	c := NewPopularController(catalog, time.Hour, nil, utils.NewNopLogger())
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	movies := c.ObserveMovies(ctx)
	series := c.ObserveSeries(ctx)
	assert.Empty(t, <-movies)
	assert.Empty(t, <-series)

	require.NoError(t, c.Refresh(ctx))

	gotMovies := <-movies
	require.Len(t, gotMovies, 1)
	assert.Equal(t, "One", gotMovies[0].Title)
	gotSeries := <-series
	require.Len(t, gotSeries, 1)
	assert.Equal(t, "Two", gotSeries[0].Name)
}

func TestPopularServesFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPopularMovies(gomock.Any(), 1).Return(moviePage(models.Movie{ID: 1, Title: "One"}), nil).Times(1)

	c := NewPopularController(catalog, time.Hour, nil, utils.NewNopLogger())
	defer c.Close()

	for i := 0; i < 3; i++ {
		movies, err := c.Movies(context.Background())
		require.NoError(t, err)
		assert.Len(t, movies, 1)
	}
}

func TestPopularFailedSideKeepsPreviousValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	gomock.InOrder(
		catalog.EXPECT().ListPopularSeries(gomock.Any(), 1).Return(seriesPage(models.Series{ID: 2, Name: "Two"}), nil),
		catalog.EXPECT().ListPopularSeries(gomock.Any(), 1).Return(nil, errors.New("timeout")),
	)
	catalog.EXPECT().ListPopularMovies(gomock.Any(), 1).Return(moviePage(), nil).Times(2)

	c := NewPopularController(catalog, time.Hour, nil, utils.NewNopLogger())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	err := c.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, models.IsCatalogError(err))

	series, err := c.Series(ctx)
	require.NoError(t, err)
	require.Len(t, series, 1, "previous popular series stay available")
	assert.Equal(t, "Two", series[0].Name)
}

func TestPopularDropsBlocklistedTitles(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPopularMovies(gomock.Any(), 1).
		Return(moviePage(models.Movie{ID: 1, Title: "Fine"}, models.Movie{ID: 2, Title: "Spoiler Trailer"}), nil)

	c := NewPopularController(catalog, time.Hour, utils.NewBlocklist("trailer"), utils.NewNopLogger())
	defer c.Close()

	movies, err := c.Movies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Fine", movies[0].Title)
}

func TestPopularNilPageIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPopularSeries(gomock.Any(), 1).Return(nil, nil)

	c := NewPopularController(catalog, time.Hour, nil, utils.NewNopLogger())
	defer c.Close()

	series, err := c.Series(context.Background())
	require.NoError(t, err)
	assert.Empty(t, series)
}
