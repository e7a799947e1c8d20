// Package scrape holds the layered HTML parsing shared by the catalog providers.
//
// A page is parsed by a cascade of stages. Each stage is a pure function of the
// document and either recognizes the layout it was written for or yields None,
// in which case the next, looser stage is tried.
package scrape

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raidenhub/phim/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Stage parses one known page layout.
type Stage func(doc *goquery.Document) mo.Option[[]*media.Item]

// Cascade returns the items of the first stage that yields at least one item.
func Cascade(doc *goquery.Document, stages ...Stage) []*media.Item {
	for _, stage := range stages {
		if items, ok := stage(doc).Get(); ok && len(items) > 0 {
			return items
		}
	}
	return nil
}

// Items wraps a parse result, treating an empty list as no match.
func Items(items []*media.Item) mo.Option[[]*media.Item] {
	items = lo.UniqBy(lo.Compact(items), func(item *media.Item) string {
		return item.DetailURL
	})
	if len(items) == 0 {
		return mo.None[[]*media.Item]()
	}
	return mo.Some(items)
}

// LinkBased is the last-resort stage: every anchor pointing into domain that carries a title attribute.
// Hrefs containing one of excluded, or ending in one of suffixes, are skipped.
func LinkBased(provider, domain string, excluded, suffixes []string) Stage {
	return func(doc *goquery.Document) mo.Option[[]*media.Item] {
		var items []*media.Item

		doc.Find(`a[href*="` + domain + `"][title]`).Each(func(_ int, a *goquery.Selection) {
			href := Abs(doc, a.AttrOr("href", ""))
			title := strings.TrimSpace(a.AttrOr("title", ""))
			if title == "" || Excluded(href, excluded, suffixes) {
				return
			}

			title, year := ExtractYear(title)
			item := media.NewItem(provider, title, href)
			item.Year = year
			item.Thumbnail = UpgradePoster(Image(a.Find("img").First()))
			item.Quality = strings.TrimSpace(a.Find("span").First().Text())
			items = append(items, item)
		})

		return Items(items)
	}
}

// Excluded reports whether href is a pagination, taxonomy or otherwise non-title URL.
func Excluded(href string, contains, suffixes []string) bool {
	if href == "" {
		return true
	}
	for _, s := range contains {
		if strings.Contains(href, s) {
			return true
		}
	}
	for _, s := range suffixes {
		if strings.HasSuffix(href, s) {
			return true
		}
	}
	return false
}

// Abs resolves href against the document URL. Unparseable hrefs are returned unchanged.
func Abs(doc *goquery.Document, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || doc == nil || doc.Url == nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return doc.Url.ResolveReference(ref).String()
}

// Image reads the lazy-loading attributes before src.
func Image(img *goquery.Selection) string {
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// Text returns the trimmed text of the first match of selector.
func Text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// Meta returns the content of the first non-empty meta tag among names, matched by name or property.
func Meta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		sel := doc.Find(`meta[name="` + name + `"], meta[property="` + name + `"]`).First()
		if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" {
			return v
		}
	}
	return ""
}

// SplitTitle separates "Vietnamese title – Original title" into its two halves.
func SplitTitle(full string) (title, alt string) {
	for _, sep := range []string{" – ", " - "} {
		if before, after, found := strings.Cut(full, sep); found {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(full), ""
}

var (
	yearParen = regexp.MustCompile(`\((\d{4})\)`)
	yearStrip = regexp.MustCompile(`\s*\(\d{4}\)\s*`)
	bareYear  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	number    = regexp.MustCompile(`[\d.]+`)
)

// ExtractYear pulls a "(yyyy)" marker out of title.
func ExtractYear(title string) (string, int) {
	var year int
	if m := yearParen.FindStringSubmatch(title); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	return strings.TrimSpace(yearStrip.ReplaceAllString(title, " ")), year
}

// ParseYear finds the first plausible four-digit year in s.
func ParseYear(s string) int {
	year, _ := strconv.Atoi(bareYear.FindString(s))
	return year
}

// ParseRating reads the first decimal number in s, as in "IMDb 7.5".
func ParseRating(s string) float64 {
	rating, _ := strconv.ParseFloat(strings.Trim(number.FindString(s), "."), 64)
	return rating
}

// UpgradePoster swaps the listing thumbnail size of TMDB images for the full poster.
func UpgradePoster(u string) string {
	return strings.Replace(u, "w220_and_h330_face", "w600_and_h900_bestv2", 1)
}

// UpgradeBackdrop swaps the small TMDB backdrop size for the wide one.
func UpgradeBackdrop(u string) string {
	return strings.Replace(u, "/w300/", "/w1280/", 1)
}

// PageURL builds the WordPress style "{category}/page/{n}/" URL. Page 1 is the category itself.
func PageURL(category string, page int) string {
	if page <= 1 {
		return category
	}
	return strings.TrimSuffix(category, "/") + "/page/" + strconv.Itoa(page) + "/"
}
