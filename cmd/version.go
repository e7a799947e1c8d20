package cmd

import (
	"os"
	"runtime"
	"runtime/debug"
	"text/template"

	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only the version string")
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}     {{ bold .Version }}
  {{ faint "Revision" }}    {{ bold .Revision }}
  {{ faint "Go" }}          {{ bold .Go }}
  {{ faint "Platform" }}    {{ bold .OS }}/{{ bold .Arch }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		revision := "unknown"
		if info, ok := debug.ReadBuildInfo(); ok {
			if s, found := lo.Find(info.Settings, func(s debug.BuildSetting) bool { return s.Key == "vcs.revision" }); found {
				revision = s.Value
			}
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), map[string]string{
			"App":      constant.Phim,
			"Version":  constant.Version,
			"Revision": revision,
			"Go":       runtime.Version(),
			"OS":       runtime.GOOS,
			"Arch":     runtime.GOARCH,
		}))
		version.Notify(cmd.Context(), os.Stderr)
	},
}
