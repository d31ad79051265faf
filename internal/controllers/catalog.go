package controllers

//go:generate mockgen -source=catalog.go -destination=mocks/catalog.go -package=mocks

import (
	"context"
	"errors"

	"github.com/amaumene/gowatchlist/internal/models"
)

// Catalog is the remote catalog consumed by the controllers
type Catalog interface {
	ListPopularMovies(ctx context.Context, page int) (*models.Page[models.Movie], error)
	ListPopularSeries(ctx context.Context, page int) (*models.Page[models.Series], error)
	SearchMovies(ctx context.Context, query string, page int) (*models.Page[models.Movie], error)
	SearchSeries(ctx context.Context, query string, page int) (*models.Page[models.Series], error)
}

// asCatalogError makes sure err is reported as a catalog failure of kind
func asCatalogError(op string, kind models.MediaKind, err error) error {
	var ce *models.CatalogError
	if errors.As(err, &ce) {
		return err
	}
	return &models.CatalogError{Op: op, Kind: kind, Err: err}
}
