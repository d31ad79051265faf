package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/scheduler"
	"github.com/amaumene/gowatchlist/internal/tracking"
	"github.com/sirupsen/logrus"
)

// Coordinator bridges user intents to the catalog and the tracking store.
// Construction has no side effects; call Start before use and Stop on exit.
type Coordinator struct {
	store     *tracking.Store
	search    *SearchController
	tracking  *TrackingController
	popular   *PopularController
	scheduler *scheduler.Scheduler // nil when popular lists are not refreshed in background
	logger    *logrus.Logger
}

// NewCoordinator wires the controllers together
func NewCoordinator(
	store *tracking.Store,
	search *SearchController,
	trackingCtrl *TrackingController,
	popular *PopularController,
	sched *scheduler.Scheduler,
	logger *logrus.Logger,
) *Coordinator {
	return &Coordinator{
		store:     store,
		search:    search,
		tracking:  trackingCtrl,
		popular:   popular,
		scheduler: sched,
		logger:    logger,
	}
}

// Start loads the tracking store and starts background refreshes
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tracking store: %w", err)
	}
	if c.scheduler != nil {
		if err := c.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}
	c.logger.Info("Coordinator started")
	return nil
}

// Stop stops background work, ends every subscription and closes the store
func (c *Coordinator) Stop() error {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	c.search.Close()
	c.popular.Close()
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close tracking store: %w", err)
	}
	c.logger.Info("Coordinator stopped")
	return nil
}

// Search runs a combined search cycle
func (c *Coordinator) Search(ctx context.Context, query string) (SearchState, error) {
	return c.search.Search(ctx, query)
}

// ToggleWatched flips the watched membership of item
func (c *Coordinator) ToggleWatched(ctx context.Context, item models.MediaItem) (bool, error) {
	return c.tracking.ToggleWatched(ctx, item)
}

// ToggleWatchlist flips the watchlist membership of item
func (c *Coordinator) ToggleWatchlist(ctx context.Context, item models.MediaItem) (bool, error) {
	return c.tracking.ToggleWatchlist(ctx, item)
}

// ObserveWatched subscribes to the watched list
func (c *Coordinator) ObserveWatched(ctx context.Context) <-chan []models.TrackingRecord {
	return c.store.ObserveWatched(ctx)
}

// ObserveWatchlist subscribes to the watchlist
func (c *Coordinator) ObserveWatchlist(ctx context.Context) <-chan []models.TrackingRecord {
	return c.store.ObserveWatchlist(ctx)
}

// Searches returns the search controller
func (c *Coordinator) Searches() *SearchController { return c.search }

// Tracking returns the tracking controller
func (c *Coordinator) Tracking() *TrackingController { return c.tracking }

// Popular returns the popular controller
func (c *Coordinator) Popular() *PopularController { return c.popular }

// Store returns the tracking store
func (c *Coordinator) Store() *tracking.Store { return c.store }
