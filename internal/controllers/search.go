package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/pubsub"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
)

const tracerName = "github.com/amaumene/gowatchlist/internal/controllers"

// SearchFailure names the side of a search cycle that failed
type SearchFailure struct {
	Kind  models.MediaKind `json:"kind"`
	Error string           `json:"error"`
}

// SearchState is the published state of the search session
type SearchState struct {
	Phase      models.SearchPhase
	Query      string
	Generation uint64
	SessionID  string // Changes with every non-blank cycle
	Results    []models.MediaItem
	Failures   []SearchFailure
}

// MarshalJSON flattens the results into kind-tagged views
func (s SearchState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase      models.SearchPhase `json:"phase"`
		Query      string             `json:"query"`
		Generation uint64             `json:"generation"`
		SessionID  string             `json:"session_id,omitempty"`
		Results    []models.MediaView `json:"results"`
		Failures   []SearchFailure    `json:"failures,omitempty"`
	}{
		Phase:      s.Phase,
		Query:      s.Query,
		Generation: s.Generation,
		SessionID:  s.SessionID,
		Results:    models.ViewsOf(s.Results),
		Failures:   s.Failures,
	})
}

// SearchController runs search cycles against the catalog and publishes their state
type SearchController struct {
	catalog   Catalog
	blocklist *utils.Blocklist
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *logrus.Logger

	mu         sync.Mutex // guards generation and cancel, orders publications
	generation uint64
	cancel     context.CancelFunc
	state      *pubsub.Subject[SearchState]
	query      *pubsub.Subject[string]
}

// NewSearchController creates a new search controller. m may be nil.
func NewSearchController(catalog Catalog, blocklist *utils.Blocklist, m *metrics.Metrics, logger *logrus.Logger) *SearchController {
	return &SearchController{
		catalog:   catalog,
		blocklist: blocklist,
		metrics:   m,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
		state: pubsub.NewSubject(SearchState{
			Phase:   models.SearchIdle,
			Results: []models.MediaItem{},
		}),
		query: pubsub.NewSubject(""),
	}
}

// Search runs a combined movie and series search for query.
// A blank query clears the results without calling the catalog.
// A call superseded by a newer one returns context.Canceled and publishes nothing.
func (c *SearchController) Search(ctx context.Context, query string) (SearchState, error) {
	return c.run(ctx, query, models.MediaKindMovie, models.MediaKindTV)
}

// SearchKind runs a search restricted to one media kind
func (c *SearchController) SearchKind(ctx context.Context, query string, kind models.MediaKind) (SearchState, error) {
	if !kind.Valid() {
		return c.State(), models.ErrInvalidKind
	}
	return c.run(ctx, query, kind)
}

// State returns the latest published search state
func (c *SearchController) State() SearchState {
	return c.state.Value()
}

// Query returns the latest normalized query
func (c *SearchController) Query() string {
	return c.query.Value()
}

// Observe subscribes to search state changes
func (c *SearchController) Observe(ctx context.Context) <-chan SearchState {
	return c.state.Subscribe(ctx)
}

// ObserveQuery subscribes to query text changes
func (c *SearchController) ObserveQuery(ctx context.Context) <-chan string {
	return c.query.Subscribe(ctx)
}

// Close cancels any in-flight search and ends every subscription
func (c *SearchController) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.state.Close()
	c.query.Close()
}

type sideResult struct {
	kind  models.MediaKind
	items []models.MediaItem
	err   error
}

func (c *SearchController) run(ctx context.Context, raw string, kinds ...models.MediaKind) (SearchState, error) {
	query := NormalizeQuery(raw)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	gen := c.generation
	c.query.Publish(query)

	if query == "" {
		idle := SearchState{Phase: models.SearchIdle, Generation: gen, Results: []models.MediaItem{}}
		c.state.Publish(idle)
		c.mu.Unlock()
		c.observeCycle("idle")
		return idle, nil
	}

	searchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	previous := c.state.Value()
	sessionID := uuid.NewString()
	c.state.Publish(SearchState{
		Phase:      models.SearchSearching,
		Query:      query,
		Generation: gen,
		SessionID:  sessionID,
		Results:    previous.Results,
	})
	c.mu.Unlock()
	defer cancel()

	searchCtx, span := c.tracer.Start(searchCtx, "search",
		trace.WithAttributes(
			attribute.String("search.query", query),
			attribute.Int64("search.generation", int64(gen)),
			attribute.Int("search.kinds", len(kinds)),
		))
	defer span.End()

	logger := c.logger.WithFields(logrus.Fields{
		"query":      query,
		"generation": gen,
		"session_id": sessionID,
	})
	logger.Debug("Starting search cycle")

	// Both sides always run to completion before anything is published.
	sides := make([]sideResult, len(kinds))
	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind models.MediaKind) {
			defer wg.Done()
			items, err := c.fetch(searchCtx, kind, query)
			sides[i] = sideResult{kind: kind, items: items, err: err}
		}(i, kind)
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		logger.Debug("Discarding results of superseded search")
		c.observeCycle("superseded")
		span.SetStatus(codes.Error, "superseded")
		return c.state.Value(), context.Canceled
	}
	c.cancel = nil

	results := []models.MediaItem{}
	var failures []SearchFailure
	var errs []error
	for _, side := range sides {
		if side.err != nil {
			failures = append(failures, SearchFailure{Kind: side.kind, Error: side.err.Error()})
			errs = append(errs, side.err)
			logger.WithError(side.err).WithField("kind", side.kind).Warn("Catalog search failed")
			span.RecordError(side.err)
			continue
		}
		results = append(results, side.items...)
	}

	if len(errs) == len(sides) {
		failed := SearchState{
			Phase:      models.SearchFailed,
			Query:      query,
			Generation: gen,
			SessionID:  sessionID,
			Results:    previous.Results,
			Failures:   failures,
		}
		c.state.Publish(failed)
		c.observeCycle("failed")
		span.SetStatus(codes.Error, "all catalog searches failed")
		logger.Error("Search cycle failed")
		return failed, errors.Join(errs...)
	}

	state := SearchState{
		Phase:      models.SearchResults,
		Query:      query,
		Generation: gen,
		SessionID:  sessionID,
		Results:    results,
		Failures:   failures,
	}
	c.state.Publish(state)

	outcome := "results"
	if len(failures) > 0 {
		outcome = "partial"
	}
	c.observeCycle(outcome)
	span.SetAttributes(attribute.Int("search.results", len(results)))
	logger.WithFields(logrus.Fields{
		"results":  len(results),
		"failures": len(failures),
	}).Info("Search cycle completed")

	return state, nil
}

// fetch runs one side of a search cycle and drops blocklisted titles
func (c *SearchController) fetch(ctx context.Context, kind models.MediaKind, query string) ([]models.MediaItem, error) {
	switch kind {
	case models.MediaKindMovie:
		page, err := c.catalog.SearchMovies(ctx, query, 1)
		if err != nil {
			return nil, asCatalogError("search", kind, err)
		}
		return filterBlocked(c.blocklist, c.logger, itemsOf(page)), nil
	case models.MediaKindTV:
		page, err := c.catalog.SearchSeries(ctx, query, 1)
		if err != nil {
			return nil, asCatalogError("search", kind, err)
		}
		return filterBlocked(c.blocklist, c.logger, itemsOf(page)), nil
	}
	return nil, models.ErrInvalidKind
}

func (c *SearchController) observeCycle(outcome string) {
	if c.metrics != nil {
		c.metrics.SearchCycles.WithLabelValues(outcome).Inc()
	}
}

// itemsOf returns the items of page; a nil page has none
func itemsOf[T any](page *models.Page[T]) []T {
	if page == nil {
		return nil
	}
	return page.Items
}

// filterBlocked converts a catalog page into media items, preserving order
func filterBlocked[T models.MediaItem](blocklist *utils.Blocklist, logger *logrus.Logger, items []T) []models.MediaItem {
	out := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		title := item.Identity().DisplayTitle
		if blocked, term := blocklist.IsBlocked(title); blocked {
			logger.WithFields(logrus.Fields{
				"title": title,
				"term":  term,
			}).Debug("Result blocklisted")
			continue
		}
		out = append(out, item)
	}
	return out
}

// NormalizeQuery trims and collapses whitespace and applies Unicode NFC
func NormalizeQuery(query string) string {
	return norm.NFC.String(strings.Join(strings.Fields(query), " "))
}
