package trends

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve trends, health, and metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			srv, err := server.New(addr, newPipeline(sqldb, nil), cfg.APITimeout, server.HealthCheck{
				Name:  "store",
				Check: sqldb.PingContext,
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (env KCAL_HTTP_ADDR, default :8080)")
}
