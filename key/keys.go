// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Logging - diagnostics written under the logs directory.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI output.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Network - shared fetcher and transport tuning for scraped providers.
const (
	NetworkTimeout        = "network.timeout"
	NetworkRateLimit      = "network.rate_limit"
	NetworkTLSFingerprint = "network.tls_fingerprint"
	NetworkUserAgent      = "network.user_agent"
)

// Sources - which providers the aggregator fans out to.
const (
	SourcesEnabled = "sources.enabled"
)

// Fshare - authenticated link resolver.
const (
	FshareAPI       = "fshare.api"
	FshareAppKey    = "fshare.app_key"
	FshareUserAgent = "fshare.user_agent"
	FshareEmail     = "fshare.email"
	FsharePassword  = "fshare.password"
)

// Stream pipeline - catalog, share link and remote folder endpoints.
const (
	ShowboxAPI      = "showbox.api"
	ShowboxShareAPI = "showbox.share_api"
	FebboxAPI       = "febbox.api"
	FebboxCookie    = "febbox.cookie"
	TMDBAPIKey      = "tmdb.api_key"
)

// Subtitles.
const (
	SubtitlesSubDLKey         = "subtitles.subdl_key"
	SubtitlesOpenSubtitlesKey = "subtitles.opensubtitles_key"
	SubtitlesSubSourceKey     = "subtitles.subsource_key"
	SubtitlesSubscene         = "subtitles.subscene"
)

// Cache and server.
const (
	CacheTTL   = "cache.ttl"
	ServerAddr = "server.addr"
)
