// Package cmd implements the command-line interface for phim.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/provider"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringSliceP("source", "S", []string{}, "Provider IDs to query instead of every registered one")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(provider.All(), func(p provider.Provider, _ int) string {
			return p.ID()
		}), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.SourcesEnabled, rootCmd.PersistentFlags().Lookup("source")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify(commandContext(cmd), os.Stderr)
	})
}

// rootCmd defines the entry point for the phim application.
var rootCmd = &cobra.Command{
	Use:   constant.Phim,
	Short: "Find a title across catalog sites and resolve something playable for it",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Find a title across catalog sites and resolve something playable for it"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.SetContext(commandContext(cmd))
			versionCmd.Run(versionCmd, args)
			return
		}
		_ = cmd.Help()
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// commandContext is the command's context, or Background for commands invoked outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fail, describe(err))
		os.Exit(1)
	}
}

// describe turns a failure into the line shown to the user.
func describe(err error) string {
	var typed *apperr.Error
	message := strings.Trim(err.Error(), " \n")
	if errors.As(err, &typed) && typed.Message != "" {
		message = typed.Message
	}

	switch {
	case apperr.IsSessionExpired(err):
		return "session expired, log in again with " + style.Bold(constant.Phim+" login")
	case errors.Is(err, apperr.ErrAuth):
		return "authentication failed: " + message
	case errors.Is(err, apperr.ErrNotFound):
		return message
	case errors.Is(err, apperr.ErrTransient):
		return "a provider did not answer, try again: " + message
	default:
		return message
	}
}
