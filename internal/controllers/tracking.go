package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/tracking"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TrackingController toggles media items on the watched and watchlist lists
type TrackingController struct {
	store  *tracking.Store
	now    func() time.Time
	tracer trace.Tracer
	logger *logrus.Logger

	mu sync.Mutex // serializes check-then-write toggles
}

// NewTrackingController creates a new tracking controller
func NewTrackingController(store *tracking.Store, logger *logrus.Logger) *TrackingController {
	return &TrackingController{
		store:  store,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
}

// ToggleWatched removes item from watched if present, adds it otherwise.
// Returns whether the item is watched afterwards.
func (c *TrackingController) ToggleWatched(ctx context.Context, item models.MediaItem) (bool, error) {
	return c.Toggle(ctx, models.ListWatched, item)
}

// ToggleWatchlist removes item from the watchlist if present, adds it otherwise
func (c *TrackingController) ToggleWatchlist(ctx context.Context, item models.MediaItem) (bool, error) {
	return c.Toggle(ctx, models.ListWatchlist, item)
}

// Toggle flips the membership of item in list
func (c *TrackingController) Toggle(ctx context.Context, list models.List, item models.MediaItem) (bool, error) {
	key := models.KeyOf(item)
	ctx, span := c.tracer.Start(ctx, "toggle",
		trace.WithAttributes(
			attribute.String("tracking.list", string(list)),
			attribute.String("tracking.key", key.String()),
		))
	defer span.End()

	logger := c.logger.WithFields(logrus.Fields{
		"list":  list,
		"key":   key.String(),
		"title": item.Identity().DisplayTitle,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	present, err := c.store.Contains(ctx, list, key)
	if err != nil {
		return c.fail(span, logger, err)
	}

	if present {
		if err := c.store.Remove(ctx, list, key); err != nil {
			return c.fail(span, logger, err)
		}
		logger.Info("Removed from list")
		return false, nil
	}

	if err := c.store.Upsert(ctx, list, models.ToTrackingRecord(item, c.now())); err != nil {
		return c.fail(span, logger, err)
	}
	logger.Info("Added to list")
	return true, nil
}

// Remove takes key off list, whatever its current membership
func (c *TrackingController) Remove(ctx context.Context, list models.List, key models.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Remove(ctx, list, key); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"list": list,
			"key":  key.String(),
		}).Error("Failed to remove tracking record")
		return err
	}
	return nil
}

// Membership reports in which lists item is tracked
func (c *TrackingController) Membership(ctx context.Context, item models.MediaItem) (tracking.Membership, error) {
	return c.MembershipOf(ctx, models.KeyOf(item))
}

// MembershipOf reports in which lists key is tracked
func (c *TrackingController) MembershipOf(ctx context.Context, key models.Key) (tracking.Membership, error) {
	m, err := c.store.Membership(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key.String()).Error("Failed to read membership")
		return tracking.Membership{}, err
	}
	return m, nil
}

// List returns the current snapshot of list
func (c *TrackingController) List(list models.List) ([]models.TrackingRecord, error) {
	if !list.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidList, list)
	}
	return c.store.Snapshot(list), nil
}

// Observe subscribes to snapshots of list
func (c *TrackingController) Observe(ctx context.Context, list models.List) (<-chan []models.TrackingRecord, error) {
	return c.store.Observe(ctx, list)
}

func (c *TrackingController) fail(span trace.Span, logger *logrus.Entry, err error) (bool, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.WithError(err).Error("Failed to toggle tracking")
	return false, err
}
