package cmd

import (
	"strings"

	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/open"
	"github.com/raidenhub/phim/stream"
	"github.com/raidenhub/phim/subtitle"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// addTitleFlags registers the flags shared by stream and subtitles.
func addTitleFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("kind", "k", string(media.Movie), "movie or series")
	cmd.Flags().IntP("year", "y", 0, "Release year, narrows the match")
	cmd.Flags().IntP("season", "s", 0, "Season number of a series")
	cmd.Flags().IntP("episode", "e", 0, "Episode number of a series")
	lo.Must0(cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(media.Movie), string(media.Series)}, cobra.ShellCompDirectiveNoFileComp
	}))
}

func titleKind(cmd *cobra.Command) media.Kind {
	kind, err := media.ParseKind(lo.Must(cmd.Flags().GetString("kind")))
	handleErr(err)
	return kind
}

func init() {
	rootCmd.AddCommand(streamCmd)
	addJSONFlag(streamCmd)
	addTitleFlags(streamCmd)
	streamCmd.Flags().Int("tmdb", 0, "TMDB id, skips the id lookup of the fallback path")
	streamCmd.Flags().String("share", "", "Share key, skips the catalog lookup entirely")
	addOpenFlags(streamCmd)
}

// addOpenFlags registers --open and --with on commands that end in a playable location.
func addOpenFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("open", "o", false, "Open the result with the system handler")
	cmd.Flags().StringP("with", "w", "", "Open the result with this application instead, e.g. mpv")
}

func openResult(cmd *cobra.Command, target string) {
	app := lo.Must(cmd.Flags().GetString("with"))
	if !lo.Must(cmd.Flags().GetBool("open")) && app == "" {
		return
	}
	handleErr(open.Start(target, app))
}

var streamCmd = &cobra.Command{
	Use:   "stream [title]",
	Short: "Resolve a title to a playable stream",
	Long: `Look the title up in the catalog, find its share folder, locate the video file
and list the stream candidates. The best one is marked.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req := stream.Request{
			Title:    strings.Join(args, " "),
			Kind:     titleKind(cmd),
			Year:     lo.Must(cmd.Flags().GetInt("year")),
			Season:   lo.Must(cmd.Flags().GetInt("season")),
			Episode:  lo.Must(cmd.Flags().GetInt("episode")),
			TMDBID:   lo.Must(cmd.Flags().GetInt("tmdb")),
			ShareKey: lo.Must(cmd.Flags().GetString("share")),
		}
		if req.Title == "" && req.ShareKey == "" {
			handleErr(cmd.Usage())
			return
		}

		result, err := stream.NewResolver().Resolve(cmd.Context(), req)
		handleErr(err)
		printStream(cmd, result)
		openResult(cmd, result.Best.URL)
	},
}

func init() {
	rootCmd.AddCommand(subtitlesCmd)
	addJSONFlag(subtitlesCmd)
	addTitleFlags(subtitlesCmd)
	subtitlesCmd.Flags().String("imdb", "", "IMDb id, used by sources that search by it")
}

var subtitlesCmd = &cobra.Command{
	Use:     "subtitles <title>",
	Aliases: []string{"subs"},
	Short:   "Search subtitle sources, Vietnamese first",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		q := subtitle.Query{
			Title:   strings.Join(args, " "),
			Kind:    titleKind(cmd),
			Year:    lo.Must(cmd.Flags().GetInt("year")),
			Season:  lo.Must(cmd.Flags().GetInt("season")),
			Episode: lo.Must(cmd.Flags().GetInt("episode")),
			IMDbID:  lo.Must(cmd.Flags().GetString("imdb")),
		}
		printSubtitles(cmd, subtitle.Default().Search(cmd.Context(), q, nil))
	},
}
