package custom

// The http_tls module gives scripts an HTTP client whose TLS handshake looks like Chrome's,
// which anti-bot fronts in front of most catalog sites require.
//
// Lua API:
//
//	http_tls.get(url)              → body string
//	http_tls.get(url, headers_tbl) → body string with custom headers
//	http_tls.request(options_tbl)  → {status, body}

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/internal/cache"
	"github.com/raidenhub/phim/network"
	lua "github.com/yuin/gopher-lua"
)

type tlsCacheEntry struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// registerTLSClient injects the "http_tls" global module into the Lua state.
func registerTLSClient(L *lua.LState, client *http.Client) {
	fetch := network.NewFetcher(client, network.BrowserHeaders(constant.UserAgent)...)

	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		return httpTLSGet(L, fetch)
	}))
	L.SetField(mod, "request", L.NewFunction(func(L *lua.LState) int {
		return httpTLSRequest(L, fetch)
	}))
	L.SetGlobal("http_tls", mod)
}

func httpTLSGet(L *lua.LState, fetch *network.Fetcher) int {
	url := L.CheckString(1)
	headers := headerFromTable(L.OptTable(2, nil))

	body, status, err := doRequest(stateContext(L), fetch, http.MethodGet, url, headers, "")
	if err != nil {
		L.RaiseError("http_tls.get failed: %s", err.Error())
		return 0
	}
	if status >= 400 {
		L.RaiseError("http_tls.get failed: status %d", status)
		return 0
	}

	L.Push(lua.LString(body))
	return 1
}

func httpTLSRequest(L *lua.LState, fetch *network.Fetcher) int {
	opts := L.CheckTable(1)

	method := strings.ToUpper(getStringField(opts, "method", http.MethodGet))
	url := getStringField(opts, "url", "")
	reqBody := getStringField(opts, "body", "")

	if url == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}

	shouldCache := lua.LVAsBool(opts.RawGetString("cache"))

	var headers http.Header
	if tbl, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		headers = headerFromTable(tbl)
	}

	var cacheKey string
	if shouldCache {
		cacheKey = cache.GenerateKey(url+reqBody, method)
		var entry tlsCacheEntry
		if cache.Read(cacheKey, &entry) {
			pushResponse(L, entry.Status, entry.Body)
			return 1
		}
	}

	body, status, err := doRequest(stateContext(L), fetch, method, url, headers, reqBody)
	if err != nil {
		L.RaiseError("http_tls.request failed: %s", err.Error())
		return 0
	}

	if shouldCache && status == http.StatusOK {
		_ = cache.Write(cacheKey, tlsCacheEntry{Status: status, Body: body})
	}

	pushResponse(L, status, body)
	return 1
}

func pushResponse(L *lua.LState, status int, body string) {
	result := L.NewTable()
	L.SetField(result, "status", lua.LNumber(status))
	L.SetField(result, "body", lua.LString(body))
	L.Push(result)
}

func getStringField(tbl *lua.LTable, key string, def string) string {
	val := tbl.RawGetString(key)
	if val == lua.LNil {
		return def
	}
	return val.String()
}

func headerFromTable(tbl *lua.LTable) http.Header {
	header := make(http.Header)
	if tbl == nil {
		return header
	}
	tbl.ForEach(func(k, v lua.LValue) {
		header.Set(k.String(), v.String())
	})
	return header
}

func stateContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// doRequest returns the body and status. Non-2xx statuses are not errors here; scripts branch on them.
func doRequest(ctx context.Context, fetch *network.Fetcher, method, url string, header http.Header, body string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	for k, values := range header {
		req.Header[k] = values
	}

	respBody, err := fetch.Do(req)
	if err != nil {
		var statusErr *network.StatusError
		if errors.As(err, &statusErr) {
			return string(respBody), statusErr.StatusCode, nil
		}
		return "", 0, err
	}

	return string(respBody), http.StatusOK, nil
}
