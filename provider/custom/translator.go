package custom

import (
	"errors"
	"strconv"
	"strings"

	"github.com/raidenhub/phim/media"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return strings.TrimSpace(val.String())
	}
	return ""
}

// getNumber accepts both numbers and numeric strings, as scripts scrape most values as text.
func getNumber(table *lua.LTable, key string) float64 {
	switch val := table.RawGetString(key).(type) {
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		n, _ := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return n
	default:
		return 0
	}
}

func itemFromTable(provider string, table *lua.LTable) (*media.Item, error) {
	title := getString(table, "title")
	url := getString(table, "url")

	if title == "" || url == "" {
		return nil, errors.New("item must have title and url")
	}

	item := media.NewItem(provider, title, url)
	item.Thumbnail = getString(table, "thumbnail")
	item.Backdrop = getString(table, "backdrop")
	item.Quality = getString(table, "quality")
	item.Year = int(getNumber(table, "year"))
	item.Rating = getNumber(table, "rating")
	return item, nil
}

// itemsFromTable converts an array of item tables. Invalid entries are skipped; the first error is
// returned only when nothing valid remains.
func itemsFromTable(provider string, table *lua.LTable) ([]*media.Item, error) {
	var (
		items []*media.Item
		errs  []error
	)

	table.ForEach(func(k, v lua.LValue) {
		if k.Type() != lua.LTNumber || v.Type() != lua.LTTable {
			return
		}

		item, err := itemFromTable(provider, v.(*lua.LTable))
		if err != nil {
			errs = append(errs, err)
			return
		}
		items = append(items, item)
	})

	if len(items) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}
	return items, nil
}

func detailFromTable(table *lua.LTable) (*media.Detail, error) {
	title := getString(table, "title")
	if title == "" {
		return nil, errors.New("detail must have title")
	}

	detail := &media.Detail{
		Title:       title,
		AltTitle:    getString(table, "alt_title"),
		Poster:      getString(table, "poster"),
		Backdrop:    getString(table, "backdrop"),
		Description: getString(table, "description"),
		Year:        int(getNumber(table, "year")),
		Rating:      getNumber(table, "rating"),
		Country:     getString(table, "country"),
	}

	if link := getString(table, "link"); link != "" {
		l := media.LinkFromURL(link)
		detail.Link = &l
	}
	if detail.Country == "" {
		detail.Country = media.InferCountry(detail.Title + " " + detail.AltTitle + " " + detail.Description)
	}

	return detail, nil
}
