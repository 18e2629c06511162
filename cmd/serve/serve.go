// Package serve implements the command that runs the operational HTTP API.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsmill/newsmill/cmd/common"
	"github.com/newsmill/newsmill/internal/api"
)

const shutdownTimeout = 10 * time.Second

// Command returns the serve command.
func Command(debug *bool) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operational HTTP API",
		Long: `Serves scraper health, scraped article records, and an on-demand
retry endpoint over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps(*debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			log := deps.Logger.WithComponent("api")

			addr := address
			if addr == "" {
				addr = deps.Config.Server.Address
			}

			router := api.SetupRouter(log, deps.Scrapers, deps.Articles, deps.Retry)

			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  deps.Config.Server.ReadTimeout,
				WriteTimeout: deps.Config.Server.WriteTimeout,
				IdleTimeout:  deps.Config.Server.IdleTimeout,
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("server started", "address", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (default from config)")

	return cmd
}
