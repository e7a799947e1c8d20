package febbox

import (
	"html"
	"regexp"
	"strings"

	"github.com/raidenhub/phim/media"
)

var (
	entryStartPattern = regexp.MustCompile(`<div\s+class="(file[^"]*)"[^>]*data-id="(\d+)"`)
	fileNamePattern   = regexp.MustCompile(`class="file_name">([^<]+)`)
	dataPathPattern   = regexp.MustCompile(`data-path="([^"]+)"`)
	attributePattern  = regexp.MustCompile(`class="file\s+([^"]*)"[^>]*data-id="(\d+)"[^>]*data-path="([^"]*)"`)

	sourcesPattern    = regexp.MustCompile(`sources\s*[:=]\s*\[`)
	objectPattern     = regexp.MustCompile(`\{[^{}]*\}`)
	fileFieldPattern  = regexp.MustCompile(`["']?file["']?\s*:\s*["']([^"']+)["']`)
	labelFieldPattern = regexp.MustCompile(`["']?label["']?\s*:\s*["']([^"']*)["']`)
	typeFieldPattern  = regexp.MustCompile(`["']?type["']?\s*:\s*["']([^"']*)["']`)
)

// ParseListing reads the HTML fragment of a share listing.
//
// Entries are split at each file div; a block runs to the start of the next one and carries the
// display name. Markup whose entries are not divs is read from the data-path attributes instead.
func ParseListing(fragment string) []media.RemoteFile {
	if files := parseBlocks(fragment); len(files) > 0 {
		return files
	}
	return parseAttributes(fragment)
}

func parseBlocks(fragment string) []media.RemoteFile {
	starts := entryStartPattern.FindAllStringSubmatchIndex(fragment, -1)

	files := make([]media.RemoteFile, 0, len(starts))
	for i, start := range starts {
		end := len(fragment)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := fragment[start[0]:end]

		class := fragment[start[2]:start[3]]
		id := fragment[start[4]:start[5]]

		name := "unknown"
		if m := fileNamePattern.FindStringSubmatch(block); m != nil {
			name = cleanName(m[1])
		} else if m := dataPathPattern.FindStringSubmatch(block); m != nil {
			name = cleanName(m[1])
		}
		files = append(files, media.NewRemoteFile(id, name, strings.Contains(class, "open_dir"), 0))
	}
	return files
}

func parseAttributes(fragment string) []media.RemoteFile {
	var files []media.RemoteFile
	for _, m := range attributePattern.FindAllStringSubmatch(fragment, -1) {
		files = append(files, media.NewRemoteFile(m[2], cleanName(m[3]), strings.Contains(m[1], "open_dir"), 0))
	}
	return files
}

func cleanName(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
