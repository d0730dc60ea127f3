// ABOUTME: HTTP API serve command
// ABOUTME: Serves the field API until interrupted

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Every request names its user in the X-User-Id header.

Examples:
  cropfit serve
  cropfit serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		srv, err := server.New(repo, log.Default())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Start(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, CROPFIT_LISTEN or 127.0.0.1:8080)")

	rootCmd.AddCommand(serveCmd)
}
