package cmd

import (
	"os/signal"
	"syscall"

	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/server"
	"github.com/raidenhub/phim/stream"
	"github.com/raidenhub/phim/subtitle"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address")
	lo.Must0(viper.BindPFlag(key.ServerAddr, serveCmd.Flags().Lookup("addr")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog, Fshare, stream and subtitle operations as a local JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(newAggregator(), newManager(), stream.NewResolver(), subtitle.Default())
		addr := viper.GetString(key.ServerAddr)
		cmd.Printf("listening on http://%s\n", addr)
		handleErr(srv.ListenAndServe(ctx, addr))
	},
}
