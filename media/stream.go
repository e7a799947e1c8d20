package media

import (
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/samber/lo"
)

// StreamCandidate is one labeled stream of a file.
type StreamCandidate struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Type    string `json:"type"`
}

// QualityAuto is the label of adaptive streams.
const QualityAuto = "AUTO"

var qualityPriority = []string{"1080p", "720p", QualityAuto}

// PickBest chooses 1080p, then 720p, then AUTO, then the first candidate.
func PickBest(candidates []StreamCandidate) (StreamCandidate, error) {
	if len(candidates) == 0 {
		return StreamCandidate{}, apperr.Resolve("media.PickBest", "no streams found")
	}

	for _, quality := range qualityPriority {
		if c, ok := lo.Find(candidates, func(c StreamCandidate) bool {
			return strings.EqualFold(c.Quality, quality)
		}); ok {
			return c, nil
		}
	}
	return candidates[0], nil
}
