// Package stream resolves a title to a playable stream: catalog id, share key, folder descent and
// stream extraction.
package stream

import (
	"context"
	"fmt"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Lister lists the entries under parentID of a share.
type Lister interface {
	List(ctx context.Context, shareKey, parentID string) ([]media.RemoteFile, error)
}

const root = "0"

func firstVideo(files []media.RemoteFile) (media.RemoteFile, bool) {
	return lo.Find(files, func(f media.RemoteFile) bool {
		return !f.IsFolder && media.IsVideo(f.Name)
	})
}

func folders(files []media.RemoteFile) []media.RemoteFile {
	return lo.Filter(files, func(f media.RemoteFile, _ int) bool { return f.IsFolder })
}

// FindPlayable looks for a movie file at most two folders deep: the root, each root folder, and each
// of their subfolders. A third level is never listed. Without any video, the first non-folder entry
// seen is used.
func FindPlayable(ctx context.Context, lister Lister, shareKey string) (media.RemoteFile, error) {
	const op = "stream.FindPlayable"

	files, err := lister.List(ctx, shareKey, root)
	if err != nil {
		return media.RemoteFile{}, err
	}
	if video, ok := firstVideo(files); ok {
		return video, nil
	}

	fallback := firstFile(mo.None[media.RemoteFile](), files)

	for _, folder := range folders(files) {
		children, err := lister.List(ctx, shareKey, folder.ID)
		if err != nil {
			return media.RemoteFile{}, err
		}
		if video, ok := firstVideo(children); ok {
			return video, nil
		}
		fallback = firstFile(fallback, children)

		for _, sub := range folders(children) {
			grandchildren, err := lister.List(ctx, shareKey, sub.ID)
			if err != nil {
				return media.RemoteFile{}, err
			}
			if video, ok := firstVideo(grandchildren); ok {
				return video, nil
			}
			fallback = firstFile(fallback, grandchildren)
		}
	}

	if f, ok := fallback.Get(); ok {
		return f, nil
	}
	return media.RemoteFile{}, apperr.NotFound(op, "no video file found")
}

// firstFile keeps seen if it is set, and otherwise takes the first non-folder entry of files.
func firstFile(seen mo.Option[media.RemoteFile], files []media.RemoteFile) mo.Option[media.RemoteFile] {
	if seen.IsPresent() {
		return seen
	}
	return mo.TupleToOption(lo.Find(files, func(f media.RemoteFile) bool { return !f.IsFolder }))
}

// FindEpisode picks the season folder, then the episode file. Ordinals extracted from names win,
// positions are the fallback.
func FindEpisode(ctx context.Context, lister Lister, shareKey string, season, episode int) (media.RemoteFile, error) {
	const op = "stream.FindEpisode"

	files, err := lister.List(ctx, shareKey, root)
	if err != nil {
		return media.RemoteFile{}, err
	}

	seasonFolder, ok := pick(folders(files), season)
	if !ok {
		return media.RemoteFile{}, apperr.NotFound(op, fmt.Sprintf("season %d not found", season))
	}

	entries, err := lister.List(ctx, shareKey, seasonFolder.ID)
	if err != nil {
		return media.RemoteFile{}, err
	}

	file, ok := pick(entries, episode)
	if !ok {
		return media.RemoteFile{}, apperr.NotFound(op, fmt.Sprintf("episode %d not found", episode))
	}
	return file, nil
}

// pick returns the entry whose ordinal is n, or else the n-th entry.
func pick(files []media.RemoteFile, n int) (media.RemoteFile, bool) {
	if f, ok := lo.Find(files, func(f media.RemoteFile) bool { return f.Ordinal == n }); ok {
		return f, true
	}
	if n >= 1 && n <= len(files) {
		return files[n-1], true
	}
	return media.RemoteFile{}, false
}
