// Package cine scrapes thuviencine.com, a WordPress catalog whose titles link to Fshare folders.
package cine

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/provider/scrape"
	"github.com/samber/mo"
)

const (
	ID   = "cine"
	Base = "https://thuviencine.com"
)

var (
	excluded = []string{"/page/", "/country/"}
	suffixes = []string{"/movies/", "/tv-series/"}
)

type Provider struct {
	base   string
	domain string
	fetch  *network.Fetcher
}

// New targets the live site.
func New(fetch *network.Fetcher) *Provider {
	return NewAt(Base, fetch)
}

// NewAt targets a mirror of the site at base.
func NewAt(base string, fetch *network.Fetcher) *Provider {
	domain := strings.TrimPrefix(Base, "https://")
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		domain = u.Host
	}
	return &Provider{
		base:   strings.TrimSuffix(base, "/"),
		domain: domain,
		fetch:  fetch,
	}
}

func (p *Provider) ID() string     { return ID }
func (p *Provider) Domain() string { return p.domain }

func (p *Provider) Category(kind media.Kind) string {
	if kind == media.Series {
		return p.base + "/tv-series/"
	}
	return p.base + "/movies/"
}

func (p *Provider) List(ctx context.Context, category string, page int) ([]*media.Item, error) {
	doc, err := p.fetch.Document(ctx, scrape.PageURL(category, page))
	if err != nil {
		return nil, err
	}
	return p.Parse(doc), nil
}

func (p *Provider) Search(ctx context.Context, query string) ([]*media.Item, error) {
	doc, err := p.fetch.Document(ctx, p.base+"/?s="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	return p.Parse(doc), nil
}

// Parse runs the listing cascade: post cards, generic theme items, then bare title links.
func (p *Provider) Parse(doc *goquery.Document) []*media.Item {
	return scrape.Cascade(doc,
		p.postCards,
		p.themeItems,
		scrape.LinkBased(ID, p.domain, excluded, suffixes),
	)
}

func (p *Provider) postCards(doc *goquery.Document) mo.Option[[]*media.Item] {
	var items []*media.Item

	doc.Find(`div[id^="post-"]`).Each(func(_ int, div *goquery.Selection) {
		full := scrape.Text(div, "h2.movie-title")
		if full == "" {
			return
		}

		href := scrape.Abs(doc, div.Find("a[href]").First().AttrOr("href", ""))
		if !strings.Contains(href, p.domain) {
			return
		}

		title, _ := scrape.SplitTitle(full)
		item := media.NewItem(ID, title, href)
		item.Year = scrape.ParseYear(scrape.Text(div, "span.movie-date"))
		item.Quality = scrape.Text(div, `span[class^="item-quality"]`)
		item.Rating = scrape.ParseRating(scrape.Text(div, "div.imdb-rating"))
		item.Thumbnail = scrape.UpgradePoster(scrape.Image(div.Find("img.lazy").First()))

		backdrop := div.Find("div.movie-backdrop").AttrOr("data-backdrop", "")
		if backdrop == "" {
			backdrop = item.Thumbnail
		}
		item.Backdrop = scrape.UpgradeBackdrop(backdrop)

		items = append(items, item)
	})

	return scrape.Items(items)
}

func (p *Provider) themeItems(doc *goquery.Document) mo.Option[[]*media.Item] {
	var items []*media.Item

	doc.Find("article, .item, .result-item, .post").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(`a[href*="` + p.domain + `"]`).First()
		if link.Length() == 0 {
			link = s.Find("a[href]").First()
		}

		href := scrape.Abs(doc, link.AttrOr("href", ""))
		if !strings.Contains(href, p.domain) || scrape.Excluded(href, excluded, suffixes) {
			return
		}

		title := strings.TrimSpace(link.AttrOr("title", ""))
		if title == "" {
			title = scrape.Text(s, "h2, h3, .title")
		}
		if title == "" {
			return
		}

		title, year := scrape.ExtractYear(title)
		item := media.NewItem(ID, title, href)
		item.Year = year
		item.Quality = scrape.Text(s, `span.quality, .calidad, span[class^="item-quality"]`)
		item.Thumbnail = scrape.UpgradePoster(scrape.Image(s.Find("img").First()))
		items = append(items, item)
	})

	return scrape.Items(items)
}

// Detail scrapes the title page. When the page has no Fshare anchor, the download page it links to is searched instead.
func (p *Provider) Detail(ctx context.Context, ref string) (*media.Detail, error) {
	doc, err := p.fetch.Document(ctx, ref)
	if err != nil {
		return nil, err
	}

	detail := ParseDetail(doc)
	detail.DetailURL = ref

	if link, ok := fshareLink(doc).Get(); ok {
		detail.Link = &link
		return detail, nil
	}

	download := doc.Find(`a[href*="download?id="]`).First()
	if download.Length() == 0 {
		download = doc.Find(`a[href*="download"]`).First()
	}
	if download.Length() == 0 {
		return detail, nil
	}

	downloadURL := scrape.Abs(doc, download.AttrOr("href", ""))
	page, err := p.fetch.Document(ctx, downloadURL)
	if err != nil {
		// the detail itself is still useful without a link
		log.WithField("url", downloadURL).WithError(err).Warn("cine: download page")
		return detail, nil
	}

	if link, ok := fshareLink(page).Get(); ok {
		detail.Link = &link
	}
	return detail, nil
}

// ParseDetail reads the metadata of a title page. The link is resolved separately.
func ParseDetail(doc *goquery.Document) *media.Detail {
	full := strings.TrimSpace(doc.Find("h1, h2.movie-title, .entry-title").First().Text())
	title, alt := scrape.SplitTitle(full)

	poster := scrape.Meta(doc, "og:image")
	if poster == "" {
		poster = scrape.Image(doc.Find(".detail-poster img, .movie-poster img, .entry-content img").First())
	}
	poster = scrape.UpgradePoster(poster)

	backdrop := doc.Find("div.movie-backdrop, div[data-backdrop]").First().AttrOr("data-backdrop", "")
	if backdrop == "" {
		backdrop = poster
	}

	description := strings.TrimSpace(doc.Find(".movie-description, .entry-content p").First().Text())
	if description == "" {
		description = scrape.Meta(doc, "description", "og:description")
	}

	return &media.Detail{
		Title:       title,
		AltTitle:    alt,
		Poster:      poster,
		Backdrop:    scrape.UpgradeBackdrop(backdrop),
		Description: description,
		Year:        scrape.ParseYear(scrape.Text(doc.Selection, "span.movie-date, .release-date")),
		Rating:      scrape.ParseRating(scrape.Text(doc.Selection, "div.imdb-rating, span.imdb")),
		Country: media.InferCountryFromZones(
			scrape.Meta(doc, "description", "og:description", "keywords")+" "+doc.Find("title").Text(),
			doc.Find(".entry-content, .movie-description").Text(),
			doc.Find("body").Text(),
		),
		Provider: ID,
	}
}

func fshareLink(doc *goquery.Document) mo.Option[media.Link] {
	href := strings.TrimSpace(doc.Find(`a[href*="fshare.vn"]`).First().AttrOr("href", ""))
	if href == "" {
		return mo.None[media.Link]()
	}
	return mo.Some(media.LinkFromURL(href))
}
