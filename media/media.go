// Package media defines the canonical model every provider result is normalized into.
package media

import (
	"fmt"
	"strings"
)

// Kind separates single films from episodic series.
type Kind string

const (
	Movie  Kind = "movie"
	Series Kind = "series"
)

// ParseKind accepts the spellings used by providers and the CLI.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film", "phim-le", "1":
		return Movie, nil
	case "series", "tv", "tv-series", "show", "2":
		return Series, nil
	default:
		return "", fmt.Errorf("unknown kind %q, expected movie or series", s)
	}
}

// Item is one listing entry. Key is the dedup identity; two providers may list the same title under different URLs.
type Item struct {
	Title     string  `json:"title"`
	Key       string  `json:"key"`
	DetailURL string  `json:"detail_url"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Backdrop  string  `json:"backdrop,omitempty"`
	Quality   string  `json:"quality,omitempty"`
	Year      int     `json:"year,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Provider  string  `json:"provider"`
}

// NewItem builds an item and derives its key.
func NewItem(provider, title, detailURL string) *Item {
	return &Item{
		Title:     title,
		Key:       NormalizeTitle(title),
		DetailURL: detailURL,
		Provider:  provider,
	}
}

// LinkKind tells a playable file apart from a folder that must be listed first.
type LinkKind string

const (
	LinkFile   LinkKind = "file"
	LinkFolder LinkKind = "folder"
)

// Link is a resolved remote-file or folder reference.
type Link struct {
	URL  string   `json:"url"`
	Kind LinkKind `json:"kind"`
}

// LinkFromURL classifies an Fshare style URL by its path.
func LinkFromURL(url string) Link {
	if strings.Contains(url, "/folder/") {
		return Link{URL: url, Kind: LinkFolder}
	}
	return Link{URL: url, Kind: LinkFile}
}

// Detail is the resolved detail page of one title.
type Detail struct {
	Title       string  `json:"title"`
	AltTitle    string  `json:"alt_title,omitempty"`
	Poster      string  `json:"poster,omitempty"`
	Backdrop    string  `json:"backdrop,omitempty"`
	Description string  `json:"description,omitempty"`
	Year        int     `json:"year,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	// Country is a best-effort code inferred from the scripts used on the page.
	Country   string `json:"country,omitempty"`
	Link      *Link  `json:"link,omitempty"`
	DetailURL string `json:"detail_url"`
	Provider  string `json:"provider"`
}
