package media

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RemoteFile is one entry of a remote folder listing.
type RemoteFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsFolder bool   `json:"is_folder"`
	Size     int64  `json:"size,omitempty"`
	Ordinal  int    `json:"ordinal"`
}

// NewRemoteFile builds an entry and extracts its ordinal from the name.
func NewRemoteFile(id, name string, isFolder bool, size int64) RemoteFile {
	return RemoteFile{
		ID:       id,
		Name:     name,
		IsFolder: isFolder,
		Size:     size,
		Ordinal:  Ordinal(name),
	}
}

var videoExtensions = []string{"mp4", "mkv", "avi", "m4v", "webm", "mov", "ts"}

// IsVideo reports whether name carries a playable container extension.
func IsVideo(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	return lo.Contains(videoExtensions, ext)
}

// The ordinal cascade. Order matters: a season folder name must not be read as an episode number.
var ordinalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)S\d+\s*E(\d+)`),
	regexp.MustCompile(`(?i)season\s*(\d+)`),
	regexp.MustCompile(`(?i)\b(?:episode|ep)\.?\s*(\d+)`),
	regexp.MustCompile(`^\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*$`),
}

var shortExtension = regexp.MustCompile(`\.[A-Za-z0-9]{2,4}$`)

// Ordinal extracts the episode or season number from a file or folder name, or 0.
func Ordinal(name string) int {
	name = path.Base(strings.TrimSpace(name))
	stem := shortExtension.ReplaceAllString(name, "")

	for i, pattern := range ordinalPatterns {
		subject := name
		// positional patterns ignore the extension, "Title.mp4" has no trailing number
		if i >= 3 {
			subject = stem
		}
		if match := pattern.FindStringSubmatch(subject); match != nil {
			n, err := strconv.Atoi(match[1])
			if err == nil {
				return n
			}
		}
	}
	return 0
}
