package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reactor/docsproxy/fetch"
	"github.com/reactor/docsproxy/internal/refresh"
	"github.com/reactor/docsproxy/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the documentation proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if listen != "" {
				a.cfg.Listen = listen
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides the config)")
	return cmd
}

// serve runs the HTTP server and, if enabled, the periodic version refresh
// until ctx is done or one of them fails.
func (a *app) serve(ctx context.Context) error {
	fetcher := fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(
		fetch.WithUserAgent(a.cfg.Fetch.UserAgent),
		fetch.WithMaxRetries(a.cfg.Fetch.MaxRetries),
	))
	srv := server.New(a.registry, a.urls, fetcher, server.WithLogger(a.logger))
	httpSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var refresher *refresh.Refresher
	if a.cfg.Refresh.Enabled {
		feeds, err := refresh.FeedsFor(a.registry, a.cfg.FeedURL, a.feedClient())
		if err != nil {
			return err
		}
		refresher = refresh.New(a.registry, feeds,
			refresh.WithConcurrency(a.cfg.Refresh.Concurrency),
			refresh.WithLogger(a.logger))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("listening", "addr", a.cfg.Listen, "modules", len(a.registry.Names()))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if refresher != nil {
		g.Go(func() error {
			return refresher.Run(ctx, a.cfg.Refresh.Interval)
		})
	}

	return g.Wait()
}
