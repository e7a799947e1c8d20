// Package fshare talks to the Fshare API: login, folder listing and download-link resolution,
// behind a session manager that keeps one valid session per process.
package fshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/network"
	"github.com/spf13/viper"
)

// ShareParam is appended to file URLs before resolving them, as the community Kodi add-ons do.
const ShareParam = "share=8805984"

// Client is the stateless API surface. Session state lives in Manager.
type Client struct {
	base      string
	appKey    string
	userAgent string
	fetch     *network.Fetcher
}

// NewClient reads the base URL, application key and User-Agent from the configuration.
func NewClient() *Client {
	return NewClientAt(
		viper.GetString(key.FshareAPI),
		viper.GetString(key.FshareAppKey),
		viper.GetString(key.FshareUserAgent),
		network.NewAPIFetcher(),
	)
}

func NewClientAt(base, appKey, userAgent string, fetch *network.Fetcher) *Client {
	return &Client{
		base:      strings.TrimSuffix(base, "/") + "/",
		appKey:    appKey,
		userAgent: userAgent,
		fetch:     fetch,
	}
}

// User is the account profile.
type User struct {
	ID           flexString `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AccountType  string     `json:"account_type"`
	ExpireVIP    flexString `json:"expire_vip"`
	Webspace     flexInt    `json:"webspace"`
	WebspaceUsed flexInt    `json:"webspace_used"`
}

func (u User) IsVIP() bool {
	return strings.EqualFold(u.AccountType, "vip")
}

type loginResponse struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Code flexInt `json:"code"`
	Msg  string  `json:"msg"`
}

type file struct {
	Name string  `json:"name"`
	URL  string  `json:"furl"`
	Size flexInt `json:"size"`
	Type flexInt `json:"type"`
}

type downloadResponse struct {
	Location string  `json:"location"`
	Code     flexInt `json:"code"`
	Msg      string  `json:"msg"`
}

func (c *Client) header(sessionID string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", c.userAgent)
	if sessionID != "" {
		h.Set("Cookie", "session_id="+sessionID)
	}
	return h
}

// Login exchanges the account pair for a token and a session id.
func (c *Client) Login(ctx context.Context, email, password string) (token, sessionID string, err error) {
	body, err := answered(c.fetch.PostJSON(ctx, c.base+"user/login", c.header(""), map[string]string{
		"app_key":    c.appKey,
		"user_email": email,
		"password":   password,
	}))
	if err != nil {
		return "", "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", apperr.Resolve("fshare.Login", "invalid login response")
	}
	if resp.Code != 200 || resp.Token == "" || resp.SessionID == "" {
		msg := resp.Msg
		if msg == "" {
			msg = "login rejected"
		}
		return "", "", apperr.Auth("fshare.Login", msg)
	}
	return resp.Token, resp.SessionID, nil
}

// Profile fetches the account of sessionID. It doubles as the session validity check.
func (c *Client) Profile(ctx context.Context, sessionID string) (*User, error) {
	var user User
	if err := c.fetch.GetJSON(ctx, c.base+"user/get", c.header(sessionID), &user); err != nil {
		return nil, err
	}
	if user.Email == "" && user.ID == "" {
		return nil, apperr.SessionExpired("fshare.Profile", "session rejected")
	}
	return &user, nil
}

// FolderList lists one page of a folder.
func (c *Client) FolderList(ctx context.Context, token, sessionID, folderURL string, page int) ([]media.RemoteFile, error) {
	body, err := answered(c.fetch.PostJSON(ctx, c.base+"fileops/getFolderList", c.header(sessionID), map[string]any{
		"token":     token,
		"url":       folderURL,
		"dirOnly":   0,
		"pageIndex": page,
		"limit":     100,
	}))
	if err != nil {
		return nil, err
	}
	return ParseFolderList(body)
}

// ParseFolderList decodes the polymorphic listing body: an array of files on success, {code,msg} on failure.
// Code 201 or a message mentioning login means the session is gone.
func ParseFolderList(body []byte) ([]media.RemoteFile, error) {
	const op = "fshare.ListFolder"

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var files []file
		if err := json.Unmarshal(body, &files); err != nil {
			return nil, apperr.Resolve(op, "invalid folder listing: "+err.Error())
		}

		remote := make([]media.RemoteFile, 0, len(files))
		for _, f := range files {
			remote = append(remote, media.NewRemoteFile(f.URL, f.Name, f.Type == 0, int64(f.Size)))
		}
		return remote, nil
	}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Resolve(op, "unexpected folder listing response")
	}
	if resp.Code == 201 || strings.Contains(strings.ToLower(resp.Msg), "login") {
		return nil, apperr.SessionExpired(op, "session expired, log in again")
	}
	return nil, apperr.Resolve(op, "fshare error ("+strconv.Itoa(int(resp.Code))+"): "+resp.Msg)
}

// Download resolves a file page URL to its CDN location.
func (c *Client) Download(ctx context.Context, token, sessionID, fileURL string) (string, error) {
	body, err := answered(c.fetch.PostJSON(ctx, c.base+"session/download", c.header(sessionID), map[string]any{
		"token":    token,
		"url":      WithShareParam(fileURL),
		"password": "",
		"zipflag":  0,
	}))
	if err != nil {
		return "", err
	}

	var resp downloadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperr.Resolve("fshare.ResolveLink", "invalid download response")
	}
	if strings.TrimSpace(resp.Location) == "" {
		if resp.Code == 201 {
			return "", apperr.SessionExpired("fshare.ResolveLink", "session expired, log in again")
		}
		msg := resp.Msg
		if msg == "" {
			msg = "failed to resolve link"
		}
		return "", apperr.Resolve("fshare.ResolveLink", msg)
	}
	return resp.Location, nil
}

// WithShareParam appends ShareParam unless the URL already carries it.
func WithShareParam(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil && u.Query().Has("share") {
		return fileURL
	}
	if strings.Contains(fileURL, "?") {
		return fileURL + "&" + ShareParam
	}
	return fileURL + "?" + ShareParam
}

// answered keeps the body of a rejected request when the API explained itself in JSON.
// Fshare reports failures with 4xx statuses and a {code,msg} body.
func answered(body []byte, err error) ([]byte, error) {
	if err == nil {
		return body, nil
	}

	var status *network.StatusError
	if errors.As(err, &status) && !status.Temporary() && json.Valid(body) {
		return body, nil
	}
	return nil, err
}
