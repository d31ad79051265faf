package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/pubsub"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	popularMoviesKey = "popular:movie"
	popularSeriesKey = "popular:tv"
)

// PopularController keeps the first page of popular movies and series
type PopularController struct {
	catalog   Catalog
	cache     *cache.Cache
	blocklist *utils.Blocklist
	movies    *pubsub.Subject[[]models.Movie]
	series    *pubsub.Subject[[]models.Series]
	logger    *logrus.Logger
}

// NewPopularController creates a popular controller whose pages expire after ttl
func NewPopularController(catalog Catalog, ttl time.Duration, blocklist *utils.Blocklist, logger *logrus.Logger) *PopularController {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PopularController{
		catalog:   catalog,
		cache:     cache.New(ttl, 2*ttl),
		blocklist: blocklist,
		movies:    pubsub.NewSubject([]models.Movie{}),
		series:    pubsub.NewSubject([]models.Series{}),
		logger:    logger,
	}
}

// Refresh fetches both popular lists. A failed side keeps its previous value.
func (c *PopularController) Refresh(ctx context.Context) error {
	_, movieErr := c.refreshMovies(ctx)
	_, seriesErr := c.refreshSeries(ctx)
	return errors.Join(movieErr, seriesErr)
}

// Movies returns popular movies, from cache when fresh
func (c *PopularController) Movies(ctx context.Context) ([]models.Movie, error) {
	if cached, ok := c.cache.Get(popularMoviesKey); ok {
		return cached.([]models.Movie), nil
	}
	return c.refreshMovies(ctx)
}

// Series returns popular series, from cache when fresh
func (c *PopularController) Series(ctx context.Context) ([]models.Series, error) {
	if cached, ok := c.cache.Get(popularSeriesKey); ok {
		return cached.([]models.Series), nil
	}
	return c.refreshSeries(ctx)
}

// ObserveMovies subscribes to popular movie updates
func (c *PopularController) ObserveMovies(ctx context.Context) <-chan []models.Movie {
	return c.movies.Subscribe(ctx)
}

// ObserveSeries subscribes to popular series updates
func (c *PopularController) ObserveSeries(ctx context.Context) <-chan []models.Series {
	return c.series.Subscribe(ctx)
}

// Close ends every subscription
func (c *PopularController) Close() {
	c.movies.Close()
	c.series.Close()
}

func (c *PopularController) refreshMovies(ctx context.Context) ([]models.Movie, error) {
	page, err := c.catalog.ListPopularMovies(ctx, 1)
	if err != nil {
		err = asCatalogError("popular", models.MediaKindMovie, err)
		c.logger.WithError(err).Warn("Failed to refresh popular movies")
		return nil, err
	}
	movies := allowed(c.blocklist, itemsOf(page))
	c.cache.SetDefault(popularMoviesKey, movies)
	c.movies.Publish(movies)
	c.logger.WithField("count", len(movies)).Debug("Popular movies refreshed")
	return movies, nil
}

func (c *PopularController) refreshSeries(ctx context.Context) ([]models.Series, error) {
	page, err := c.catalog.ListPopularSeries(ctx, 1)
	if err != nil {
		err = asCatalogError("popular", models.MediaKindTV, err)
		c.logger.WithError(err).Warn("Failed to refresh popular series")
		return nil, err
	}
	series := allowed(c.blocklist, itemsOf(page))
	c.cache.SetDefault(popularSeriesKey, series)
	c.series.Publish(series)
	c.logger.WithField("count", len(series)).Debug("Popular series refreshed")
	return series, nil
}

// allowed drops blocklisted titles, keeping the concrete item type
func allowed[T models.MediaItem](blocklist *utils.Blocklist, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if blocked, _ := blocklist.IsBlocked(item.Identity().DisplayTitle); !blocked {
			out = append(out, item)
		}
	}
	return out
}
