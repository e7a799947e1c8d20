package cmd

import (
	"os"

	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	name    string
	where   func() string
	argLong string
	hidden  bool
}

var wherePaths = []whereTarget{
	{"Config", where.Config, "config", false},
	{"Sources", where.Sources, "sources", false},
	{"Logs", where.Logs, "logs", false},
	{"Cache", where.Cache, "cache", false},
	{"Credentials", where.Credentials, "credentials", true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range wherePaths {
		whereCmd.Flags().Bool(t.argLong, false, t.name+" path")
		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.argLong))
		}
	}
	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the directories phim reads and writes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(t.argLong)) {
				cmd.Println(t.where())
				return
			}
		}

		visible := lo.Reject(wherePaths, func(t whereTarget, _ int) bool { return t.hidden })
		for i, t := range visible {
			cmd.Printf("%s %s\n", style.New().Bold(true).Foreground(color.Purple).Render(t.name+"?"), style.Fg(color.Yellow)("--"+t.argLong))
			cmd.Println(t.where())
			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
