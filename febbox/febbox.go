// Package febbox lists shared FebBox folders and extracts the streams of a shared file.
package febbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Root is the parent id of the top level of a share.
const Root = "0"

// Client reads shares through the FebBox web endpoints.
type Client struct {
	base   string
	cookie string
	fetch  *network.Fetcher
}

// NewClient reads the base URL and cookie from the configuration.
func NewClient() *Client {
	return NewClientAt(viper.GetString(key.FebboxAPI), viper.GetString(key.FebboxCookie), network.NewScrapeFetcher())
}

func NewClientAt(base, cookie string, fetch *network.Fetcher) *Client {
	return &Client{base: strings.TrimSuffix(base, "/"), cookie: cookie, fetch: fetch}
}

func (c *Client) header(shareKey string) http.Header {
	h := make(http.Header)
	h.Set("Referer", c.base+"/share/"+shareKey)
	h.Set("X-Requested-With", "XMLHttpRequest")
	if c.cookie != "" {
		h.Set("Cookie", "ui="+c.cookie)
	}
	return h
}

// List lists the entries under parentID of a share.
func (c *Client) List(ctx context.Context, shareKey, parentID string) ([]media.RemoteFile, error) {
	const op = "febbox.List"

	query := url.Values{}
	query.Set("share_key", shareKey)
	query.Set("pwd", "")
	query.Set("parent_id", parentID)
	query.Set("is_html", "1")

	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		HTML string `json:"html"`
	}
	if err := c.fetch.GetJSON(ctx, c.base+"/file/file_share_list?"+query.Encode(), c.header(shareKey), &resp); err != nil {
		return nil, err
	}
	if resp.Code != 1 {
		return nil, apperr.Resolve(op, "febbox error: "+resp.Msg)
	}

	files := ParseListing(resp.HTML)
	log.WithFields(logrus.Fields{"share": shareKey, "parent": parentID, "files": len(files)}).Debug("febbox: listed")
	return files, nil
}

// Streams returns the playable streams of a shared file, audio-only tracks excluded.
func (c *Client) Streams(ctx context.Context, shareKey, fid string) ([]media.StreamCandidate, error) {
	query := url.Values{}
	query.Set("share_key", shareKey)
	query.Set("fid", fid)

	body, err := c.fetch.Get(ctx, c.base+"/file/player/video?"+query.Encode(), c.header(shareKey))
	if err != nil {
		return nil, err
	}

	streams := ParseStreams(string(body))
	if len(streams) == 0 {
		return nil, apperr.Resolve("febbox.Streams", "no streams found")
	}
	return streams, nil
}

type source struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ParseStreams extracts the player's sources array.
func ParseStreams(page string) []media.StreamCandidate {
	literal := sourcesLiteral(page)
	if literal == "" {
		return nil
	}

	var sources []source
	if err := json.Unmarshal([]byte(literal), &sources); err != nil {
		sources = looseSources(literal)
	}

	var streams []media.StreamCandidate
	for _, s := range sources {
		if s.File == "" {
			continue
		}
		label := strings.TrimSpace(s.Label)
		if label == "" {
			label = media.QualityAuto
		}
		if strings.HasPrefix(strings.ToLower(label), "audio") {
			continue
		}
		streams = append(streams, media.StreamCandidate{URL: s.File, Quality: label, Type: streamType(s)})
	}
	return streams
}

// sourcesLiteral cuts the array assigned to sources out of page, up to its matching bracket.
// Brackets inside quoted strings do not count. An unterminated array yields "".
func sourcesLiteral(page string) string {
	loc := sourcesPattern.FindStringIndex(page)
	if loc == nil {
		return ""
	}

	start := loc[1] - 1
	depth := 0
	var quote byte
	for i := start; i < len(page); i++ {
		c := page[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return page[start : i+1]
			}
		}
	}
	return ""
}

func streamType(s source) string {
	if s.Type != "" {
		return s.Type
	}
	if strings.Contains(s.File, ".m3u8") {
		return "hls"
	}
	return "file"
}

// looseSources reads a JavaScript array literal that is not valid JSON, such as one with single quotes or bare keys.
func looseSources(literal string) []source {
	var sources []source
	for _, object := range objectPattern.FindAllString(literal, -1) {
		var s source
		if m := fileFieldPattern.FindStringSubmatch(object); m != nil {
			s.File = m[1]
		}
		if m := labelFieldPattern.FindStringSubmatch(object); m != nil {
			s.Label = m[1]
		}
		if m := typeFieldPattern.FindStringSubmatch(object); m != nil {
			s.Type = m[1]
		}
		sources = append(sources, s)
	}
	return sources
}
