package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const imageBaseURL = "https://image.tmdb.org/t/p"

// MediaItem is a movie or a series fetched from the catalog.
// Only Movie and Series implement it.
type MediaItem interface {
	Kind() MediaKind
	Identity() Identity
	Date() *string
	mediaItem()
}

// Identity is the normalized identity shared by every media kind
type Identity struct {
	ID           int64
	Kind         MediaKind
	DisplayTitle string
	PosterPath   *string
}

// Key returns the compound tracking key of the identity
func (i Identity) Key() Key {
	return Key{ID: i.ID, Kind: i.Kind}
}

// Movie is a movie-shaped catalog payload
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	Overview    string  `json:"overview"`
	ReleaseDate *string `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

func (Movie) mediaItem() {}

// Kind returns MediaKindMovie
func (Movie) Kind() MediaKind { return MediaKindMovie }

// Date returns the release date
func (m Movie) Date() *string { return m.ReleaseDate }

// Identity returns the normalized identity of the movie
func (m Movie) Identity() Identity {
	return Identity{ID: m.ID, Kind: MediaKindMovie, DisplayTitle: m.Title, PosterPath: m.PosterPath}
}

// Series is a series-shaped catalog payload
type Series struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	Overview     string  `json:"overview"`
	FirstAirDate *string `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

func (Series) mediaItem() {}

// Kind returns MediaKindTV
func (Series) Kind() MediaKind { return MediaKindTV }

// Date returns the first air date
func (s Series) Date() *string { return s.FirstAirDate }

// Identity returns the normalized identity of the series
func (s Series) Identity() Identity {
	return Identity{ID: s.ID, Kind: MediaKindTV, DisplayTitle: s.Name, PosterPath: s.PosterPath}
}

// Page is a single result page returned by the catalog
type Page[T any] struct {
	PageNumber int `json:"page"`
	Items      []T `json:"results"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_results"`
}

// Key identifies a tracked item. Catalog ids are only unique within a kind.
type Key struct {
	ID   int64
	Kind MediaKind
}

// String returns "<kind>:<id>", the storage key
func (k Key) String() string {
	return string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

// Validate checks the key can be stored
func (k Key) Validate() error {
	if k.ID < 0 {
		return fmt.Errorf("%w: negative media id %d", ErrInvalidRecord, k.ID)
	}
	if !k.Kind.Valid() {
		return fmt.Errorf("%w: unknown media kind %q", ErrInvalidRecord, k.Kind)
	}
	return nil
}

// ParseKey parses a "<kind>:<id>" storage key
func ParseKey(s string) (Key, error) {
	kindPart, idPart, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("%w: malformed key %q", ErrInvalidRecord, s)
	}
	kind, err := ParseMediaKind(kindPart)
	if err != nil {
		return Key{}, err
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: malformed id in key %q", ErrInvalidRecord, s)
	}
	return Key{ID: id, Kind: kind}, nil
}

// KeyOf returns the tracking key of a media item
func KeyOf(item MediaItem) Key {
	return item.Identity().Key()
}

// TrackingRecord is a persisted membership row of the watched or watchlist table
type TrackingRecord struct {
	MediaID              int64     `json:"media_id"`
	MediaKind            MediaKind `json:"media_kind"`
	Title                string    `json:"title"`      // Snapshot at tracking time
	PosterPath           *string   `json:"poster_path"`
	TrackedAtEpochMillis int64     `json:"tracked_at_epoch_millis"` // Sort order only
}

// Key returns the compound key of the record
func (r TrackingRecord) Key() Key {
	return Key{ID: r.MediaID, Kind: r.MediaKind}
}

// TrackedAt returns the tracking time
func (r TrackingRecord) TrackedAt() time.Time {
	return time.UnixMilli(r.TrackedAtEpochMillis)
}

// ToTrackingRecord builds the record persisted when the user tracks an item
func ToTrackingRecord(item MediaItem, now time.Time) TrackingRecord {
	id := item.Identity()
	return TrackingRecord{
		MediaID:              id.ID,
		MediaKind:            id.Kind,
		Title:                id.DisplayTitle,
		PosterPath:           id.PosterPath,
		TrackedAtEpochMillis: now.UnixMilli(),
	}
}

// PosterURL builds the full image URL for a poster path, e.g. size "w500"
func PosterURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return imageBaseURL + "/" + size + "/" + strings.TrimPrefix(*path, "/")
}
