package community

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/media"
	"github.com/samber/lo"
)

// Row is one shared title. Link is an Fshare file or folder, or another sheet.
type Row struct {
	Name        string  `json:"name"`
	Link        string  `json:"link"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Description string  `json:"description,omitempty"`
	Fanart      string  `json:"fanart,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// IsSheet reports whether the row points at a nested sheet rather than a title.
func (r Row) IsSheet() bool {
	return strings.Contains(r.Link, Domain)
}

// Item converts the row into a listing entry. Nested sheets keep their own URL so they can be listed as a category.
func (r Row) Item(sheetURL string) *media.Item {
	ref := r.Link
	if !r.IsSheet() {
		ref = Ref(sheetURL, r)
	}

	item := media.NewItem(ID, r.Name, ref)
	item.Thumbnail = r.Thumbnail
	item.Backdrop = r.Fanart
	item.Rating = r.Rating
	return item
}

const refMarker = "#link="

// Ref encodes a row into a detail reference of the form sheetURL#link=<escaped link>&title=<escaped name>.
func Ref(sheetURL string, r Row) string {
	base := sheetURL
	if i := strings.Index(base, refMarker); i >= 0 {
		base = base[:i]
	}
	fragment := url.Values{"link": {r.Link}, "title": {r.Name}}
	return base + "#" + fragment.Encode()
}

// ParseRef reverses Ref.
func ParseRef(ref string) (string, Row, error) {
	i := strings.LastIndex(ref, refMarker)
	if i < 0 {
		return "", Row{}, apperr.NotFound("community.Detail", "not a row reference: "+ref)
	}

	values, err := url.ParseQuery(ref[i+1:])
	if err != nil || values.Get("link") == "" {
		return "", Row{}, apperr.Resolve("community.Detail", "malformed row reference")
	}

	return ref[:i], Row{Name: values.Get("title"), Link: values.Get("link")}, nil
}

var (
	kodiColor = regexp.MustCompile(`\[COLOR\s+[^\]]+]`)
	kodiTags  = strings.NewReplacer("[/COLOR]", "", "[B]", "", "[/B]", "", "[I]", "", "[/I]", "", "*", "", "@", "")
	tokenTail = regexp.MustCompile(`(https.+?)/\?token`)
)

// StripKodiTags removes the [COLOR], [B] and [I] markup sheets copy from Kodi menus.
func StripKodiTags(s string) string {
	return strings.TrimSpace(kodiTags.Replace(kodiColor.ReplaceAllString(s, "")))
}

// CleanLink drops a "/?token=..." suffix.
func CleanLink(link string) string {
	if m := tokenTail.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return link
}

// IsValidLink keeps Fshare and sheet links and rejects contact or donation rows.
func IsValidLink(link string) bool {
	return strings.Contains(link, "fshare.vn") || strings.Contains(link, Domain)
}

// ParseRows accepts both layouts: everything pipe-joined in the first cell, or one field per column.
func ParseRows(cells [][]*string) []Row {
	return lo.FilterMap(cells, func(row []*string, _ int) (Row, bool) {
		name := cell(row, 0)
		if name == "" {
			return Row{}, false
		}
		if strings.Contains(name, "|") {
			return pipeRow(name)
		}
		return columnRow(name, row)
	})
}

func pipeRow(raw string) (Row, bool) {
	parts := strings.Split(raw, "|")
	part := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}

	link := part(1)
	if !IsValidLink(link) {
		return Row{}, false
	}

	return Row{
		Name:        StripKodiTags(part(0)),
		Link:        link,
		Thumbnail:   part(2),
		Description: part(3),
		Fanart:      part(4),
	}, true
}

func columnRow(name string, row []*string) (Row, bool) {
	link := cell(row, 1)
	if !IsValidLink(link) {
		return Row{}, false
	}

	rating, _ := strconv.ParseFloat(cell(row, 6), 64)
	return Row{
		Name:        StripKodiTags(name),
		Link:        CleanLink(link),
		Thumbnail:   cell(row, 2),
		Description: cell(row, 3),
		Fanart:      cell(row, 4),
		Genre:       cell(row, 5),
		Rating:      rating,
	}, true
}

func cell(row []*string, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(*row[i])
}
