// Package tvhd scrapes thuvienhd.top. Its detail pages link straight to Fshare files, one per quality.
package tvhd

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/provider/scrape"
	"github.com/samber/mo"
)

const (
	ID   = "tvhd"
	Base = "https://thuvienhd.top"
)

var excluded = []string{"/page/", "/genre/"}

type Provider struct {
	base   string
	domain string
	fetch  *network.Fetcher
}

func New(fetch *network.Fetcher) *Provider {
	return NewAt(Base, fetch)
}

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
		return p.base + "/genre/series"
	}
	return p.base + "/genre/phim-le"
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

func (p *Provider) Parse(doc *goquery.Document) []*media.Item {
	return scrape.Cascade(doc,
		p.articles("article.item.movies, article.item"),
		p.articles("article"),
		scrape.LinkBased(ID, p.domain, excluded, nil),
	)
}

func (p *Provider) articles(selector string) scrape.Stage {
	return func(doc *goquery.Document) mo.Option[[]*media.Item] {
		var items []*media.Item

		doc.Find(selector).Each(func(_ int, article *goquery.Selection) {
			link := article.Find(".data h3 a").First()
			if link.Length() == 0 {
				link = article.Find("h3 a").First()
			}

			title := strings.TrimSpace(link.Text())
			href := scrape.Abs(doc, link.AttrOr("href", ""))
			if title == "" || !strings.Contains(href, p.domain) {
				return
			}

			item := media.NewItem(ID, title, href)
			item.Year = scrape.ParseYear(scrape.Text(article, ".data span"))
			item.Quality = scrape.Text(article, ".poster .quality_slider, .quality, .calidad")
			item.Thumbnail = scrape.UpgradePoster(scrape.Image(article.Find(".poster img").First()))
			items = append(items, item)
		})

		return scrape.Items(items)
	}
}

func (p *Provider) Detail(ctx context.Context, ref string) (*media.Detail, error) {
	doc, err := p.fetch.Document(ctx, ref)
	if err != nil {
		return nil, err
	}

	detail := ParseDetail(doc)
	detail.DetailURL = ref
	return detail, nil
}

// ParseDetail reads a title page. The first direct file or folder anchor becomes the link.
func ParseDetail(doc *goquery.Document) *media.Detail {
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	title, year := scrape.ExtractYear(heading)
	alt := scrape.Text(doc.Selection, ".data h2")

	poster := scrape.Image(doc.Find(".poster img").First())
	if poster == "" {
		poster = scrape.Meta(doc, "og:image")
	}
	backdrop := scrape.Meta(doc, "og:image")
	if backdrop == "" {
		backdrop = poster
	}

	description := scrape.Text(doc.Selection, "#info")
	if description == "" {
		description = strings.TrimSpace(doc.Find(".wp-content p").Text())
	}

	detail := &media.Detail{
		Title:       title,
		AltTitle:    alt,
		Poster:      scrape.UpgradePoster(poster),
		Backdrop:    backdrop,
		Description: description,
		Year:        year,
		Rating:      scrape.ParseRating(doc.Find(".extra .metadata span, .imdb-rating, .dt_rating_vgs").Text()),
		Country: media.InferCountryFromZones(
			scrape.Meta(doc, "description", "og:description", "keywords")+" "+heading+" "+alt,
			doc.Find("#info, .wp-content").Text(),
			doc.Find("body").Text(),
		),
		Provider: ID,
	}

	anchor := doc.Find(`a[href*="fshare.vn/file/"], a[href*="fshare.vn/folder/"]`).First()
	if anchor.Length() == 0 {
		anchor = doc.Find(`a[href*="fshare.vn"]`).First()
	}
	if href := strings.TrimSpace(anchor.AttrOr("href", "")); href != "" {
		link := media.LinkFromURL(href)
		detail.Link = &link
	}

	return detail
}
