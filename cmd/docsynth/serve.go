// cmd/docsynth/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/server"
	"github.com/julianshen/docsynth/internal/wiki"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		addrFlag        string
		dbFlag          string
		concurrencyFlag int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the job API server",
		Long: `Serve POST /jobs to start a documentation run in the background and
GET /jobs/{id} to poll its status, progress and log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mode, err := generator.ParseMode(cfg.Generation.Mode)
			if err != nil {
				return err
			}
			db := dbFlag
			if db == "" {
				db = cfg.Output.DB
			}

			js, cache, closeStores, err := stores(db)
			if err != nil {
				return err
			}
			defer closeStores()

			runner, err := newRunner(cfg, js, cache, concurrencyFlag)
			if err != nil {
				return err
			}

			handler := server.NewHandler(runner, js, wiki.Config{
				OutputDir: cfg.Output.Dir,
				Mode:      mode,
				Scan:      scanOptions(cfg),
			})
			srv := &http.Server{
				Addr:              addrFlag,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				fmt.Fprintf(os.Stderr, "docsynth: listening on %s\n", addrFlag)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				fmt.Fprintf(os.Stderr, "docsynth: shutting down...\n")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Printf("WARNING: shutdown: %v", err)
				}
				runner.Wait()
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dbFlag, "db", "", "sqlite file for the durable cache and job snapshots")
	cmd.Flags().IntVar(&concurrencyFlag, "concurrency", 5, "max parallel file parses")

	return cmd
}
