// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Phim + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Check for a newer release after \"phim version\" and help output")

	register(key.NetworkTimeout, 15, "Per-request timeout in seconds for provider calls")
	register(key.NetworkRateLimit, 8, "Maximum requests per second sent to a single scraped provider")
	register(key.NetworkTLSFingerprint, true, "Present a Chrome TLS fingerprint to scraped providers")
	register(key.NetworkUserAgent, constant.UserAgent, "User-Agent header sent to scraped providers")

	register(key.SourcesEnabled, []string{}, "Provider IDs the aggregator queries.\nEmpty means every registered provider.\nType \"phim sources list\" to show available providers")

	register(key.FshareAPI, "https://api.fshare.vn/api/", "Fshare API base URL")
	register(key.FshareAppKey, "dMnqMMZMUnN5YpvKENaEhdQQ5jxDqddt", "Fshare application key")
	register(key.FshareUserAgent, "Vietmediaf /Kodi1.1.99-092019", "User-Agent registered with the Fshare application key")
	register(key.FshareEmail, "", "Fallback Fshare account email used by auto-login")
	register(key.FsharePassword, "", "Fallback Fshare account password used by auto-login")

	register(key.ShowboxAPI, "https://mbpapi.shegu.net/api/api_client/index/", "Catalog search endpoint")
	register(key.ShowboxShareAPI, "https://showbox.media/index/share_link", "Share link endpoint")
	register(key.FebboxAPI, "https://www.febbox.com", "Remote folder host")
	register(key.FebboxCookie, "", "Optional FebBox \"ui\" cookie for authenticated listings")
	register(key.TMDBAPIKey, "", "TMDB API key used for the numeric-id fallback of the stream resolver")

	register(key.SubtitlesSubDLKey, "", "SubDL API key. Provider is skipped if empty")
	register(key.SubtitlesOpenSubtitlesKey, "", "OpenSubtitles API key. Provider is skipped if empty")
	register(key.SubtitlesSubSourceKey, "", "SubSource API key. Provider is skipped if empty")
	register(key.SubtitlesSubscene, true, "Scrape Subscene for subtitles")

	register(key.CacheTTL, 6, "Lifetime of cached listings and subtitle searches, in hours")
	register(key.ServerAddr, "127.0.0.1:7878", "Listen address of \"phim serve\"")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
