package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/cpkdash/internal/server"
	"github.com/KaramelBytes/cpkdash/internal/session"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if serveAddr != "" {
			c.ListenAddr = serveAddr
		}
		if c.ListenAddr == "" {
			return fmt.Errorf("no listen address: pass --addr or set listen_addr")
		}
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		store := session.NewStore(c.SessionTTL(), c.MaxSessions)
		return server.New(c, store).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
