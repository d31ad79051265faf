package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestToTrackingRecordMovie(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	movie := Movie{ID: 603, Title: "The Matrix", PosterPath: strPtr("/matrix.jpg")}

	rec := ToTrackingRecord(movie, now)

	if rec.MediaID != 603 || rec.MediaKind != MediaKindMovie {
		t.Fatalf("unexpected identity: %+v", rec)
	}
	if rec.Title != "The Matrix" {
		t.Errorf("expected title from movie, got %q", rec.Title)
	}
	if rec.PosterPath == nil || *rec.PosterPath != "/matrix.jpg" {
		t.Errorf("expected poster path copied, got %v", rec.PosterPath)
	}
	if rec.TrackedAtEpochMillis != 1700000000000 {
		t.Errorf("expected tracking time from clock, got %d", rec.TrackedAtEpochMillis)
	}
}

func TestToTrackingRecordSeries(t *testing.T) {
	series := Series{ID: 1399, Name: "Game of Thrones"}

	rec := ToTrackingRecord(series, time.Now())

	if rec.MediaKind != MediaKindTV {
		t.Errorf("expected kind tv, got %q", rec.MediaKind)
	}
	if rec.Title != "Game of Thrones" {
		t.Errorf("expected title from series name, got %q", rec.Title)
	}
	if rec.PosterPath != nil {
		t.Errorf("expected nil poster path, got %v", *rec.PosterPath)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := Key{ID: 10, Kind: MediaKindTV}
	if key.String() != "tv:10" {
		t.Fatalf("unexpected key string %q", key.String())
	}

	parsed, err := ParseKey("series:10")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if parsed != key {
		t.Errorf("expected %v, got %v", key, parsed)
	}

	for _, bad := range []string{"", "movie", "book:1", "movie:abc"} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestKeyValidate(t *testing.T) {
	if err := (Key{ID: 0, Kind: MediaKindMovie}).Validate(); err != nil {
		t.Errorf("expected id 0 to be valid, got %v", err)
	}
	if err := (Key{ID: -1, Kind: MediaKindMovie}).Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for negative id, got %v", err)
	}
	if err := (Key{ID: 1, Kind: "book"}).Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for unknown kind, got %v", err)
	}
}

func TestDecodeCatalogPayloads(t *testing.T) {
	payload := `{"page":1,"results":[{"id":603,"title":"The Matrix","poster_path":null,"overview":"Neo","release_date":"1999-03-30","vote_average":8.2}],"total_pages":3,"total_results":41}`

	var page Page[Movie]
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.PageNumber != 1 || page.TotalPages != 3 || page.TotalItems != 41 {
		t.Errorf("unexpected page metadata: %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "The Matrix" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Items[0].PosterPath != nil {
		t.Errorf("expected null poster path to decode as nil")
	}
}

func TestViewOf(t *testing.T) {
	series := Series{ID: 1, Name: "Show", PosterPath: strPtr("/s.jpg"), FirstAirDate: strPtr("2011-04-17"), VoteAverage: 8.4}

	view := ViewOf(series)

	if view.MediaType != MediaKindTV || view.Title != "Show" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Year != 2011 {
		t.Errorf("expected year 2011, got %d", view.Year)
	}
	if view.PosterURL != "https://image.tmdb.org/t/p/w500/s.jpg" {
		t.Errorf("unexpected poster url %q", view.PosterURL)
	}

	item, err := view.Item()
	if err != nil {
		t.Fatalf("Item returned error: %v", err)
	}
	if KeyOf(item) != KeyOf(series) {
		t.Errorf("expected round trip to keep key, got %v", KeyOf(item))
	}
}

func TestParseMediaKindAndList(t *testing.T) {
	if k, err := ParseMediaKind("Movie"); err != nil || k != MediaKindMovie {
		t.Errorf("expected movie, got %q (%v)", k, err)
	}
	if k, err := ParseMediaKind("show"); err != nil || k != MediaKindTV {
		t.Errorf("expected tv, got %q (%v)", k, err)
	}
	if _, err := ParseMediaKind("book"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
	if l, err := ParseList("Watchlist"); err != nil || l != ListWatchlist {
		t.Errorf("expected watchlist, got %q (%v)", l, err)
	}
	if _, err := ParseList("favorites"); !errors.Is(err, ErrInvalidList) {
		t.Errorf("expected ErrInvalidList, got %v", err)
	}
}

func TestErrorTypes(t *testing.T) {
	base := errors.New("disk full")
	err := error(&StorageError{Op: "upsert", List: ListWatched, Key: "movie:1", Err: base})
	if !errors.Is(err, base) || !IsStorageError(err) {
		t.Errorf("expected storage error to unwrap to base")
	}
	if IsCatalogError(err) {
		t.Errorf("storage error must not be a catalog error")
	}

	cerr := error(&CatalogError{Op: "search", Kind: MediaKindTV, Status: 500, Err: base})
	if !IsCatalogError(cerr) || !errors.Is(cerr, base) {
		t.Errorf("expected catalog error to unwrap to base")
	}
}
