// Package subtitle searches several subtitle sites at once and ranks the merged results,
// Vietnamese first and English second.
package subtitle

import (
	"context"
	"strings"

	"github.com/raidenhub/phim/media"
)

// Result is one downloadable subtitle.
type Result struct {
	URL             string `json:"url"`
	Language        string `json:"language"`
	Label           string `json:"label"`
	Source          string `json:"source"`
	FileName        string `json:"file_name,omitempty"`
	Downloads       int    `json:"downloads,omitempty"`
	HearingImpaired bool   `json:"hearing_impaired,omitempty"`
}

type Query struct {
	Title   string     `json:"title"`
	Year    int        `json:"year,omitempty"`
	Kind    media.Kind `json:"kind,omitempty"`
	Season  int        `json:"season,omitempty"`
	Episode int        `json:"episode,omitempty"`
	IMDbID  string     `json:"imdb_id,omitempty"`
}

// Source is one subtitle site.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Result, error)
}

var languageNames = []struct{ code, name string }{
	{"vi", "vietnam"},
	{"en", "english"},
	{"ja", "japan"},
	{"ko", "korean"},
	{"zh", "chinese"},
	{"fr", "french"},
	{"es", "spanish"},
	{"ar", "arabic"},
}

// LanguageCode maps a language name or code to its two-letter code.
func LanguageCode(lang string) string {
	lower := strings.ToLower(strings.TrimSpace(lang))
	for _, l := range languageNames {
		if lower == l.code || strings.Contains(lower, l.name) {
			return l.code
		}
	}
	if runes := []rune(lower); len(runes) > 2 {
		return string(runes[:2])
	}
	return lower
}

// LanguageName is the display name of a two-letter code.
func LanguageName(code string) string {
	switch code {
	case "vi":
		return "Vietnamese"
	case "en":
		return "English"
	case "ja":
		return "Japanese"
	case "ko":
		return "Korean"
	case "zh":
		return "Chinese"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	default:
		return strings.ToUpper(code)
	}
}

func wanted(code string) bool {
	return code == "vi" || code == "en"
}
