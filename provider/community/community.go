// Package community reads the curated Google Sheets where users share their Fshare collections.
package community

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/internal/cache"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
)

const (
	ID     = "community"
	Domain = "docs.google.com"

	// SheetsBase is where both the sheet URLs and the gviz endpoint live.
	SheetsBase = "https://docs.google.com/spreadsheets/d/"
)

// Source is one curated collection.
type Source struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// IsSheet tells spreadsheets apart from plain Fshare folders in the curated list.
func (s Source) IsSheet() bool {
	return strings.Contains(s.URL, Domain)
}

// Sources lists the collections verified alive. The first one backs the home page.
var Sources = []Source{
	{Name: "Zinzuno", URL: SheetsBase + "1S6iSi0tWvqKVk5en2NDx9N5XeDquwOWh4GlGKIEezyo/edit#gid=482627435"},
	{Name: "MrBenHien", URL: SheetsBase + "1-5Ou_oDhtHxaXLQSWGVpAFQS1C-dgTUgnNWNwx66ZFs/edit?usp=sharing"},
	{Name: "Canodinh", URL: SheetsBase + "1ETAFpPH71Y5kKO5JScvrDIJNu2M252f7ofd_2Qcy6aA/edit?gid=0#gid=0"},
	{Name: "Linh Huynh", URL: SheetsBase + "1-2rcg28cil-Hlw0gpvLp7J-CVhLu3rHGhukjvNfBSZI/edit?usp=sharing"},
	{Name: "THB", URL: SheetsBase + "1S6iSi0tWvqKVk5en2NDx9N5XeDquwOWh4GlGKIEezyo/edit#gid=1573953762"},
	{Name: "Kamenrider1997", URL: SheetsBase + "1i2_cgLiSmyY3q1RB4axBid_4jM29HBw3C7rZI9QK2J8/edit#gid=0"},
	{Name: "Kphung", URL: SheetsBase + "1tvD0F6l7Vm7LI9SDFDrnqKYg0G6cgppyxywAGR59C0o/edit?usp=sharing"},
	{Name: "Huỳnh Phước Pháp", URL: SheetsBase + "1uI8ZwdS_WbSdOLGORPsFhQUgHyUBZbXeGryjTqt4Yyo/edit#gid=0"},
	{Name: "Sontho22", URL: SheetsBase + "1WX7r75gIW8-sX72x5uzXLtam0Wruz9bMqtp5xcVPptI/edit?usp=sharing"},
	{Name: "Melodies of Life", URL: SheetsBase + "1QfG84of1a2OcUoIhFfPugXudyhwiRH3F-g2MLhaPjos/edit?usp=sharing"},
	{Name: "Tùng Bùi", URL: SheetsBase + "1MUofoMzCbElPAv0oFmruPzm6IXKoBWWcCwoDaLtLPGo/edit?gid=0#gid=0"},
	{Name: "Phim 4K 2024", URL: "https://www.fshare.vn/folder/M6QUUDZLQPZL", Description: "Kho phim 4K Ultra HD chọn lọc"},
}

type Provider struct {
	fetch   *network.Fetcher
	gviz    string
	sources []Source
}

func New(fetch *network.Fetcher) *Provider {
	return NewWith(fetch, SheetsBase, Sources)
}

// NewWith reads sheets through another gviz base and curated list.
func NewWith(fetch *network.Fetcher, gvizBase string, sources []Source) *Provider {
	return &Provider{
		fetch:   fetch,
		gviz:    strings.TrimSuffix(gvizBase, "/") + "/",
		sources: sources,
	}
}

func (p *Provider) ID() string     { return ID }
func (p *Provider) Domain() string { return Domain }

// Category ignores kind: the sheets mix movies and series.
func (p *Provider) Category(media.Kind) string {
	sheets := p.sheets()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0].URL
}

func (p *Provider) sheets() []Source {
	return lo.Filter(p.sources, func(s Source, _ int) bool { return s.IsSheet() })
}

// List reads the rows of a sheet. Sheets are not paginated, so only page 1 has content.
func (p *Provider) List(ctx context.Context, sheetURL string, page int) ([]*media.Item, error) {
	if page > 1 {
		return nil, nil
	}

	rows, err := p.Rows(ctx, sheetURL)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row Row, _ int) *media.Item {
		return row.Item(sheetURL)
	}), nil
}

// Search matches the query against every curated sheet concurrently. Unreadable sheets are skipped.
func (p *Provider) Search(ctx context.Context, query string) ([]*media.Item, error) {
	perSheet := lop.Map(p.sheets(), func(s Source, _ int) []*media.Item {
		items, err := p.List(ctx, s.URL, 1)
		if err != nil {
			log.WithField("sheet", s.Name).WithError(err).Warn("community: skipping sheet")
			return nil
		}
		return lo.Filter(items, func(item *media.Item, _ int) bool {
			return fuzzy.MatchNormalizedFold(query, item.Title)
		})
	})

	return lo.Flatten(perSheet), nil
}

// Detail decodes a row reference without touching the network.
func (p *Provider) Detail(_ context.Context, ref string) (*media.Detail, error) {
	sheetURL, row, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	link := media.LinkFromURL(row.Link)
	return &media.Detail{
		Title:       row.Name,
		Link:        &link,
		DetailURL:   sheetURL,
		Provider:    ID,
		Description: row.Description,
		Poster:      row.Thumbnail,
	}, nil
}

// Rows fetches and parses a sheet, served from the response cache when fresh.
func (p *Provider) Rows(ctx context.Context, sheetURL string) ([]Row, error) {
	id, gid, err := SheetID(sheetURL)
	if err != nil {
		return nil, err
	}

	cacheKey := cache.GenerateKey(id+"#"+gid, ID)
	var rows []Row
	if cache.Read(cacheKey, &rows) {
		return rows, nil
	}

	endpoint := fmt.Sprintf("%s%s/gviz/tq?gid=%s&headers=1", p.gviz, id, gid)
	body, err := p.fetch.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	cells, err := ParseGviz(body)
	if err != nil {
		return nil, err
	}

	rows = ParseRows(cells)
	if err := cache.Write(cacheKey, rows); err != nil {
		log.WithError(err).Warn("community: caching sheet")
	}
	return rows, nil
}

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`gid=(\d+)`)
	jsonpPattern   = regexp.MustCompile(`(?s)\((\{.*\})\)`)
)

// SheetID extracts the spreadsheet id and tab gid from any of the sheet URL shapes. The gid defaults to 0.
func SheetID(sheetURL string) (id, gid string, err error) {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", "", apperr.Resolve("community.SheetID", "invalid sheet URL: "+sheetURL)
	}

	gid = "0"
	if g := gidPattern.FindStringSubmatch(sheetURL); g != nil {
		gid = g[1]
	}
	return m[1], gid, nil
}

type gvizCell struct {
	V any `json:"v"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

type gvizResponse struct {
	Table struct {
		Rows []gvizRow `json:"rows"`
	} `json:"table"`
}

// ParseGviz unwraps the JSONP envelope and flattens the table into cells. A null cell becomes nil.
func ParseGviz(body []byte) ([][]*string, error) {
	m := jsonpPattern.FindSubmatch(body)
	if m == nil {
		return nil, apperr.Resolve("community.ParseGviz", "invalid sheet response")
	}

	var resp gvizResponse
	if err := json.Unmarshal(m[1], &resp); err != nil {
		return nil, apperr.Resolve("community.ParseGviz", err.Error())
	}

	return lo.Map(resp.Table.Rows, func(row gvizRow, _ int) []*string {
		return lo.Map(row.C, func(cell *gvizCell, _ int) *string {
			if cell == nil || cell.V == nil {
				return nil
			}
			return lo.ToPtr(cellString(cell.V))
		})
	}), nil
}

func cellString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
