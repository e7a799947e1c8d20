package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/raidenhub/phim/auth"
	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/fshare"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newManager() *fshare.Manager {
	return fshare.NewManager(fshare.NewClient(), auth.Open())
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Account password. Prompted for when omitted")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Fshare and remember the session",
	Run: func(cmd *cobra.Command, args []string) {
		email := lo.Must(cmd.Flags().GetString("email"))
		password := lo.Must(cmd.Flags().GetString("password"))

		if email == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Email"}, &email, survey.WithValidator(survey.Required)))
		}
		if password == "" {
			handleErr(survey.AskOne(&survey.Password{Message: "Password"}, &password, survey.WithValidator(survey.Required)))
		}

		user, err := newManager().Login(cmd.Context(), email, password)
		handleErr(err)

		account := lo.Ternary(user.IsVIP(), style.Fg(color.Orange)("VIP"), style.Faint(lo.CoalesceOrEmpty(user.AccountType, "member")))
		fmt.Printf("%s logged in as %s %s\n", style.Success, style.Fg(color.Purple)(user.Email), account)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved Fshare session and credentials",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(newManager().Logout())
		fmt.Printf("%s logged out\n", style.Success)
	},
}

func init() {
	rootCmd.AddCommand(folderCmd)
	addJSONFlag(folderCmd)
	folderCmd.Flags().IntP("page", "p", 0, "Page of a hundred entries to list, starting at 1. Every page when omitted")
}

var folderCmd = &cobra.Command{
	Use:   "folder <url>",
	Short: "List an Fshare folder, logging in when needed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := newManager()

		var files []media.RemoteFile
		var err error
		if page := lo.Must(cmd.Flags().GetInt("page")); page > 0 {
			files, err = manager.Browse(cmd.Context(), args[0], page-1)
		} else {
			files, err = manager.BrowseAll(cmd.Context(), args[0])
		}
		handleErr(err)
		printFiles(cmd, files)
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	addJSONFlag(linkCmd)
	addOpenFlags(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link <url>",
	Short: "Resolve an Fshare file to a direct download location",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		location, err := newManager().Resolve(cmd.Context(), args[0])
		handleErr(err)
		if !printJSON(cmd, map[string]string{"url": location}) {
			cmd.Println(location)
		}
		openResult(cmd, location)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	addJSONFlag(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the Fshare account in use, restoring or establishing the session",
	Run: func(cmd *cobra.Command, args []string) {
		manager := newManager()
		handleErr(manager.EnsureLoggedIn(cmd.Context()))

		user, ok := manager.User().Get()
		if !ok {
			cmd.Println(style.Faint("logged in, profile unavailable"))
			return
		}
		if printJSON(cmd, user) {
			return
		}
		cmd.Printf("%s %s\n", style.Fg(color.Purple)(user.Email), style.Faint(user.Name))
		cmd.Printf("account  %s\n", lo.CoalesceOrEmpty(user.AccountType, "member"))
		if user.IsVIP() {
			cmd.Printf("vip until %s\n", user.ExpireVIP)
		}
	},
}
