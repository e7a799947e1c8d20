package cmd

import (
	"fmt"

	"github.com/raidenhub/phim/auth"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/where"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort string
	clear    func() error
}

var clearTargets = []clearTarget{
	{"cache", "cache", "c", func() error { return filesystem.API().RemoveAll(where.Cache()) }},
	{"logs", "logs", "l", func() error { return filesystem.API().RemoveAll(where.Logs()) }},
	{"saved credentials", "credentials", "a", func() error { return auth.Open().Clear() }},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	for _, t := range clearTargets {
		clearCmd.Flags().BoolP(t.argLong, t.argShort, false, "clear "+t.name)
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses, logs or saved credentials",
	Run: func(cmd *cobra.Command, args []string) {
		var cleared bool
		for _, t := range clearTargets {
			if on, _ := cmd.Flags().GetBool(t.argLong); !on {
				continue
			}
			cleared = true
			handleErr(t.clear())
			fmt.Printf("%s cleared %s\n", style.Success, t.name)
		}

		if !cleared {
			handleErr(cmd.Help())
		}
	},
}
