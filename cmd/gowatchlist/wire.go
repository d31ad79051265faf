//go:build wireinject
// +build wireinject

package main

import (
	"github.com/amaumene/gowatchlist/internal/api"
	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/google/wire"
	"github.com/sirupsen/logrus"
)

var metricsSet = wire.NewSet(provideRegistry, provideMetrics)

var catalogSet = wire.NewSet(
	provideCatalog,
	provideBlocklist,
	providePopular,
	controllers.NewSearchController,
)

var trackingSet = wire.NewSet(
	provideBackend,
	provideStore,
	controllers.NewTrackingController,
)

func initializeApp(cfg *config.Config, logger *logrus.Logger) (*application, func(), error) {
	wire.Build(
		metricsSet,
		catalogSet,
		trackingSet,
		provideScheduler,
		provideGatherer,
		controllers.NewCoordinator,
		api.NewServer,
		wire.Struct(new(application), "*"),
	)
	return nil, nil, nil
}

func initializeCatalog(cfg *config.Config, logger *logrus.Logger) (*catalogApp, error) {
	wire.Build(
		metricsSet,
		catalogSet,
		wire.Struct(new(catalogApp), "*"),
	)
	return nil, nil
}

func initializeTracking(cfg *config.Config, logger *logrus.Logger) (*trackingApp, func(), error) {
	wire.Build(
		metricsSet,
		trackingSet,
		wire.Struct(new(trackingApp), "*"),
	)
	return nil, nil, nil
}
