package models

import (
	"fmt"
	"strings"
)

// MediaKind represents the kind of media (movie or tv series)
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
)

// Valid reports whether the kind is one of the known media kinds
func (k MediaKind) Valid() bool {
	return k == MediaKindMovie || k == MediaKindTV
}

// ParseMediaKind parses a media kind, accepting "series" and "show" as aliases for tv
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return MediaKindMovie, nil
	case "tv", "series", "show", "shows":
		return MediaKindTV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// List represents one of the two tracking tables
type List string

const (
	ListWatched   List = "watched"
	ListWatchlist List = "watchlist"
)

// Lists holds every tracking list in display order
var Lists = []List{ListWatched, ListWatchlist}

// Valid reports whether the list is a known tracking list
func (l List) Valid() bool {
	return l == ListWatched || l == ListWatchlist
}

// ParseList parses a tracking list name
func ParseList(s string) (List, error) {
	l := List(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidList, s)
	}
	return l, nil
}

// SearchPhase represents the state of a search session
type SearchPhase string

const (
	SearchIdle      SearchPhase = "idle"      // Empty query, no results
	SearchSearching SearchPhase = "searching" // Requests in flight
	SearchResults   SearchPhase = "results"   // Both sub-queries resolved
	SearchFailed    SearchPhase = "failed"    // Both sub-queries failed
)
