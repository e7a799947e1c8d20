package cmd

import (
	"strings"

	"github.com/raidenhub/phim/aggregator"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/provider"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newAggregator() *aggregator.Aggregator {
	return aggregator.New(provider.Enabled()...)
}

func init() {
	rootCmd.AddCommand(homeCmd)
	addJSONFlag(homeCmd)
}

var homeCmd = &cobra.Command{
	Use:       "home [movie|series]",
	Short:     "List the home page of every provider, interleaved",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(media.Movie), string(media.Series)},
	Run: func(cmd *cobra.Command, args []string) {
		kind := media.Movie
		if len(args) == 1 {
			var err error
			kind, err = media.ParseKind(args[0])
			handleErr(err)
		}
		printItems(cmd, newAggregator().Home(cmd.Context(), kind))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addJSONFlag(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every provider and merge the results",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printItems(cmd, newAggregator().Search(cmd.Context(), strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	addJSONFlag(categoryCmd)
	categoryCmd.Flags().IntP("page", "p", 1, "Page of the category listing, starting at 1")
}

var categoryCmd = &cobra.Command{
	Use:   "category <url>",
	Short: "List one page of a category on the provider that owns it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		page := max(lo.Must(cmd.Flags().GetInt("page")), 1)
		printItems(cmd, newAggregator().Category(cmd.Context(), args[0], page))
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
	addJSONFlag(detailCmd)
}

var detailCmd = &cobra.Command{
	Use:   "detail <url>",
	Short: "Show the detail page of a title",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		detail, err := newAggregator().Detail(cmd.Context(), args[0])
		handleErr(err)
		printDetail(cmd, detail)
	},
}
