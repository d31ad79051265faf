package main

import (
	"fmt"

	"github.com/amaumene/gowatchlist/internal/api"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/amaumene/gowatchlist/internal/scheduler"
	"github.com/amaumene/gowatchlist/internal/services/tmdb"
	"github.com/amaumene/gowatchlist/internal/tracking"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// application is everything the serve command runs
type application struct {
	Coordinator *controllers.Coordinator
	Server      *api.Server
}

// catalogApp serves the commands that only talk to the catalog
type catalogApp struct {
	Search  *controllers.SearchController
	Popular *controllers.PopularController
}

// trackingApp serves the commands that only touch the local lists
type trackingApp struct {
	Store    *tracking.Store
	Tracking *controllers.TrackingController
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func provideCatalog(cfg *config.Config, m *metrics.Metrics, logger *logrus.Logger) (controllers.Catalog, error) {
	if err := cfg.RequireCatalog(); err != nil {
		return nil, err
	}
	client, err := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBLanguage, logger,
		tmdb.WithTimeout(cfg.TMDBTimeout),
		tmdb.WithRetries(cfg.TMDBRetries, 0),
		tmdb.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize TMDB client: %w", err)
	}
	logger.Info("TMDB client initialized")
	return client, nil
}

func provideBlocklist(cfg *config.Config, logger *logrus.Logger) *utils.Blocklist {
	blocklist, err := utils.LoadBlocklist(cfg.BlocklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blocklist, continuing without it")
		return utils.NewBlocklist()
	}
	logger.WithField("terms", blocklist.Len()).Debug("Blocklist loaded")
	return blocklist
}

// provideBackend opens the configured backend. The cleanup closes it when a
// later provider fails; closing an already closed backend is a no-op.
func provideBackend(cfg *config.Config, logger *logrus.Logger) (tracking.Backend, func(), error) {
	var (
		backend tracking.Backend
		err     error
	)
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		backend, err = models.NewSQLDatabase(cfg.SQLiteFile, logger)
	default:
		backend, err = models.NewDatabase(cfg.DatabaseFile, cfg.StoreOpenTimeout, logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return backend, cleanup, nil
}

func provideStore(backend tracking.Backend, m *metrics.Metrics, logger *logrus.Logger) *tracking.Store {
	return tracking.New(backend, logger, tracking.WithMetrics(m))
}

func providePopular(catalog controllers.Catalog, cfg *config.Config, blocklist *utils.Blocklist, logger *logrus.Logger) *controllers.PopularController {
	return controllers.NewPopularController(catalog, cfg.PopularCacheTTL, blocklist, logger)
}

func provideScheduler(popular *controllers.PopularController, cfg *config.Config, logger *logrus.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(popular, cfg.PopularRefreshCron, logger)
}

func provideGatherer(reg *prometheus.Registry) prometheus.Gatherer {
	return reg
}
