package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/internal/scraper"
	"github.com/raidenhub/phim/network"
	"github.com/raidenhub/phim/provider"
	"github.com/raidenhub/phim/provider/custom"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/util"
	"github.com/raidenhub/phim/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const luaExtension = ".lua"

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage built-in and Lua catalog providers",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesListCmd.Flags().BoolP("raw", "r", false, "Only provider ids, without headers")
	sourcesListCmd.Flags().BoolP("custom", "c", false, "Only Lua providers")
	sourcesListCmd.Flags().BoolP("builtin", "b", false, "Only built-in providers")
	sourcesListCmd.MarkFlagsMutuallyExclusive("custom", "builtin")
	sourcesListCmd.SetOut(os.Stdout)
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered providers and their domains",
	Run: func(cmd *cobra.Command, args []string) {
		raw := lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render

		show := func(header string, providers []provider.Provider) {
			if !raw {
				cmd.Println(headerStyle(header))
			}
			for _, p := range providers {
				if raw {
					cmd.Println(p.ID())
					continue
				}
				cmd.Printf("%s %s\n", p.ID(), style.Faint(p.Domain()))
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("builtin")):
			show("Builtin:", provider.Builtins())
		case lo.Must(cmd.Flags().GetBool("custom")):
			show("Custom:", provider.Customs())
		default:
			show("Builtin:", provider.Builtins())
			if !raw {
				cmd.Println()
			}
			show("Custom:", provider.Customs())
		}
	},
}

func completionCustomSources(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	files, err := filesystem.API().ReadDir(where.Sources())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return lo.FilterMap(files, func(f os.FileInfo, _ int) (string, bool) {
		return util.FileStem(f.Name()), strings.HasSuffix(f.Name(), luaExtension)
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	sourcesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Name of the Lua provider to remove")
	lo.Must0(sourcesRemoveCmd.RegisterFlagCompletionFunc("name", completionCustomSources))
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove Lua providers",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Sources(), name+luaExtension)
			handleErr(filesystem.API().Remove(path))
			scraper.Forget(path)
			fmt.Printf("%s removed %s\n", style.Success, style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesInstallCmd)
	sourcesInstallCmd.Flags().StringP("name", "n", "", "Name to install the script under, the URL file name by default")
}

var sourcesInstallCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Download a Lua provider and check that it loads",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		remote, err := url.Parse(args[0])
		handleErr(err)

		name := lo.Must(cmd.Flags().GetString("name"))
		if name == "" {
			name = util.FileStem(remote.Path)
		}
		path := filepath.Join(where.Sources(), util.SanitizeFilename(name)+luaExtension)

		fetch := network.NewScrapeFetcher()
		changed, err := scraper.Install(cmd.Context(), fetch, remote.String(), path)
		handleErr(err)
		if !changed {
			fmt.Printf("%s %s is up to date\n", style.Success, name)
			return
		}

		p, err := custom.Load(path, fetch.Client())
		if err != nil {
			_ = filesystem.API().Remove(path)
			scraper.Forget(path)
			handleErr(err)
		}
		p.Close()
		fmt.Printf("%s installed %s to %s\n", style.Success, style.Fg(color.Yellow)(p.ID()), path)
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)
	sourcesGenCmd.Flags().StringP("name", "n", "", "Display name of the provider")
	sourcesGenCmd.Flags().StringP("url", "u", "", "Base URL of the site")
	lo.Must0(sourcesGenCmd.MarkFlagRequired("name"))
	lo.Must0(sourcesGenCmd.MarkFlagRequired("url"))
}

var sourcesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a Lua provider script",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		base := strings.TrimSuffix(lo.Must(cmd.Flags().GetString("url")), "/")
		site, err := url.Parse(base)
		handleErr(err)

		name := lo.Must(cmd.Flags().GetString("name"))
		s := struct {
			Name, URL, Author, ID, Domain string

			IDVar, DomainVar, MoviesVar, SeriesVar string
			ListFn, SearchFn, DetailFn             string
		}{
			Name:      name,
			URL:       base,
			Author:    author,
			ID:        strings.ToLower(util.SanitizeFilename(name)),
			Domain:    site.Hostname(),
			IDVar:     constant.ProviderIDVar,
			DomainVar: constant.ProviderDomainVar,
			MoviesVar: constant.CategoryMoviesVar,
			SeriesVar: constant.CategorySeriesVar,
			ListFn:    constant.ListFn,
			SearchFn:  constant.SearchFn,
			DetailFn:  constant.DetailFn,
		}

		tmpl, err := template.New("source").Funcs(template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}).Parse(constant.SourceTemplate)
		handleErr(err)

		target := filepath.Join(where.Sources(), util.SanitizeFilename(name)+luaExtension)
		f, err := filesystem.API().Create(target)
		handleErr(err)
		defer util.Ignore(f.Close)

		handleErr(tmpl.Execute(f, s))
		cmd.Println(target)
	},
}
