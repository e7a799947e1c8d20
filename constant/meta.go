// Package constant defines immutable application-level identifiers and build-time defaults.
package constant

const (
	// Phim is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Phim = "phim"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the browser User-Agent presented to scraped providers.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"
)

// Build-time fallback credentials for the Fshare session manager.
// Injected with -ldflags "-X github.com/raidenhub/phim/constant.FallbackEmail=...".
var (
	FallbackEmail    string
	FallbackPassword string
)
