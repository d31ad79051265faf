package models

import "github.com/amaumene/gowatchlist/internal/utils"

// MediaView is the flat, kind-tagged form of a MediaItem sent to clients
type MediaView struct {
	ID          int64     `json:"id"`
	MediaType   MediaKind `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  *string   `json:"poster_path"`
	PosterURL   string    `json:"poster_url,omitempty"`
	Overview    string    `json:"overview"`
	Date        *string   `json:"date"`
	Year        int       `json:"year,omitempty"`
	VoteAverage float64   `json:"vote_average"`
}

// ViewOf flattens a media item for presentation
func ViewOf(item MediaItem) MediaView {
	id := item.Identity()
	view := MediaView{
		ID:         id.ID,
		MediaType:  id.Kind,
		Title:      id.DisplayTitle,
		PosterPath: id.PosterPath,
		PosterURL:  PosterURL(id.PosterPath, "w500"),
		Date:       item.Date(),
	}

	switch v := item.(type) {
	case Movie:
		view.Overview = v.Overview
		view.VoteAverage = v.VoteAverage
	case Series:
		view.Overview = v.Overview
		view.VoteAverage = v.VoteAverage
	}

	if view.Date != nil {
		view.Year = utils.ExtractYear(*view.Date)
	}
	return view
}

// ViewsOf flattens a result set, preserving order
func ViewsOf(items []MediaItem) []MediaView {
	views := make([]MediaView, 0, len(items))
	for _, item := range items {
		views = append(views, ViewOf(item))
	}
	return views
}

// Item rebuilds the media item a view was made from
func (v MediaView) Item() (MediaItem, error) {
	switch v.MediaType {
	case MediaKindMovie:
		return Movie{
			ID:          v.ID,
			Title:       v.Title,
			PosterPath:  v.PosterPath,
			Overview:    v.Overview,
			ReleaseDate: v.Date,
			VoteAverage: v.VoteAverage,
		}, nil
	case MediaKindTV:
		return Series{
			ID:           v.ID,
			Name:         v.Title,
			PosterPath:   v.PosterPath,
			Overview:     v.Overview,
			FirstAirDate: v.Date,
			VoteAverage:  v.VoteAverage,
		}, nil
	}
	return nil, ErrInvalidKind
}
