// Package showbox finds a title in the ShowBox catalog and turns it into a FebBox share key.
package showbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var errInvalidCiphertext = errors.New("showbox: invalid ciphertext")

const (
	appID      = "27"
	platform   = "android"
	version    = "129"
	medium     = "Website"
	userAgent  = "okhttp/3.2.0"
	appVersion = "11.5"
)

// Result is one catalog hit.
type Result struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	BoxType    int    `json:"box_type"`
	Year       int    `json:"year"`
	IMDbRating string `json:"imdb_rating"`
	Quality    string `json:"quality_tag"`
}

// UnmarshalJSON accepts numbers and numeric strings alike, the catalog mixes both.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Result{
		ID:         number(raw["id"]),
		Title:      text(raw["title"]),
		BoxType:    number(raw["box_type"]),
		Year:       number(raw["year"]),
		IMDbRating: text(raw["imdb_rating"]),
		Quality:    text(raw["quality_tag"]),
	}
	return nil
}

func number(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// Kind maps the catalog box type to a media kind.
func (r Result) Kind() media.Kind {
	if r.BoxType == 2 {
		return media.Series
	}
	return media.Movie
}

type Client struct {
	api      string
	shareAPI string
	fetch    *network.Fetcher
	now      func() time.Time
}

func NewClient() *Client {
	return NewClientAt(viper.GetString(key.ShowboxAPI), viper.GetString(key.ShowboxShareAPI), network.NewAPIFetcher())
}

func NewClientAt(api, shareAPI string, fetch *network.Fetcher) *Client {
	return &Client{api: api, shareAPI: shareAPI, fetch: fetch, now: time.Now}
}

// boxType is the numeric type of the share link endpoint.
func boxType(kind media.Kind) int {
	if kind == media.Series {
		return 2
	}
	return 1
}

func searchType(kind media.Kind) string {
	switch kind {
	case media.Movie:
		return "movie"
	case media.Series:
		return "tv"
	default:
		return "all"
	}
}

// Body builds the form body of an encrypted catalog request.
func (c *Client) Body(module string, params map[string]string) (string, error) {
	data := map[string]string{
		"childmode":    "0",
		"app_version":  appVersion,
		"lang":         "en",
		"platform":     platform,
		"channel":      medium,
		"appid":        appID,
		"version":      version,
		"medium":       medium,
		"expired_date": strconv.FormatInt(c.now().Add(12*time.Hour).Unix(), 10),
		"module":       module,
	}
	for k, v := range params {
		data[k] = v
	}

	plain, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	encrypted := Encrypt(plain)

	envelope, err := json.Marshal(map[string]string{
		"app_key":      md5Hex(appKey),
		"verify":       Verify(encrypted),
		"encrypt_data": encrypted,
	})
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("data", base64.StdEncoding.EncodeToString(envelope))
	form.Set("appid", appID)
	form.Set("platform", platform)
	form.Set("version", version)
	form.Set("medium", medium)

	// the trailing token has no value, the API only checks its presence
	return form.Encode() + "&token" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

// Search runs a Search5 query.
func (c *Client) Search(ctx context.Context, title string, kind media.Kind) ([]Result, error) {
	const op = "showbox.Search"

	body, err := c.Body("Search5", map[string]string{
		"keyword":   title,
		"type":      searchType(kind),
		"page":      "1",
		"pagelimit": "20",
	})
	if err != nil {
		return nil, apperr.Resolve(op, err.Error())
	}

	header := make(http.Header)
	header.Set("Platform", platform)
	header.Set("User-Agent", userAgent)

	raw, err := c.fetch.PostForm(ctx, c.api, header, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperr.Resolve(op, "invalid search response")
	}

	var results []Result
	if len(resp.Data) > 0 && resp.Data[0] == '[' {
		if err := json.Unmarshal(resp.Data, &results); err != nil {
			log.WithField("op", op).WithError(err).Warn("showbox: decoding results")
		}
	}

	log.WithFields(logrus.Fields{"title": title, "results": len(results)}).Debug("showbox: search")
	return results, nil
}

// Match picks the catalog entry for title: exact normalized title, then the closest title of the
// same kind, then the first result.
func Match(results []Result, title string, kind media.Kind) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}

	normalized := media.NormalizeTitle(title)
	if exact, ok := lo.Find(results, func(r Result) bool {
		return media.NormalizeTitle(r.Title) == normalized
	}); ok {
		return exact, true
	}

	sameKind := lo.Filter(results, func(r Result, _ int) bool { return r.Kind() == kind })
	if len(sameKind) > 0 {
		return lo.MinBy(sameKind, func(a, b Result) bool {
			return levenshtein.Distance(normalized, media.NormalizeTitle(a.Title)) <
				levenshtein.Distance(normalized, media.NormalizeTitle(b.Title))
		}), true
	}

	return results[0], true
}

// FindID resolves a title to its catalog id.
func (c *Client) FindID(ctx context.Context, title string, kind media.Kind) (int, error) {
	results, err := c.Search(ctx, title, kind)
	if err != nil {
		return 0, err
	}

	match, ok := Match(results, title, kind)
	if !ok {
		return 0, apperr.NotFound("showbox.FindID", "not found in catalog: "+title)
	}
	log.WithFields(logrus.Fields{"title": title, "id": match.ID, "match": match.Title}).Debug("showbox: matched")
	return match.ID, nil
}

// ShareKey returns the FebBox share key of a catalog id.
func (c *Client) ShareKey(ctx context.Context, id int, kind media.Kind) (string, error) {
	const op = "showbox.ShareKey"

	query := url.Values{}
	query.Set("id", strconv.Itoa(id))
	query.Set("type", strconv.Itoa(boxType(kind)))

	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data *struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := c.fetch.GetJSON(ctx, c.shareAPI+"?"+query.Encode(), nil, &resp); err != nil {
		return "", err
	}

	if resp.Code != 1 || resp.Data == nil {
		msg := resp.Msg
		if msg == "" {
			msg = "no share link"
		}
		return "", apperr.Resolve(op, msg)
	}

	shareKey := ShareKeyFromLink(resp.Data.Link)
	if shareKey == "" {
		return "", apperr.Resolve(op, "empty share key for id "+strconv.Itoa(id))
	}
	return shareKey, nil
}

// ShareKeyFromLink returns what follows the last "/share/" of link.
func ShareKeyFromLink(link string) string {
	i := strings.LastIndex(link, "/share/")
	if i < 0 {
		return ""
	}
	return strings.Trim(link[i+len("/share/"):], "/ ")
}
