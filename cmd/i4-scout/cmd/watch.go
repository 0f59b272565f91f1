package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aaearon/i4-scout/internal/scrape"
)

func watchCmd() *cobra.Command {
	var bypassCache bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run recurring scrape passes",
		Long: "Runs as a daemon, executing a scrape pass for each configured\n" +
			"source on its own interval. Shuts down gracefully on SIGINT or\n" +
			"SIGTERM, letting an in-flight pass finish.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			cache, err := a.cache(ctx, bypassCache)
			if err != nil {
				return err
			}

			rec := a.reconciler()
			runners := make(map[*scrape.Runner]time.Duration, len(a.cfg.Scrape.Sources))
			for _, src := range a.cfg.Scrape.Sources {
				runners[a.runner(src, cache, rec)] = src.Interval
			}

			sched, err := scrape.NewScheduler(runners, a.log)
			if err != nil {
				return fmt.Errorf("building scheduler: %w", err)
			}

			var metricsSrv *http.Server
			if a.cfg.Metrics.Enabled {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				metricsSrv = &http.Server{
					Addr:              a.cfg.Metrics.Addr,
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					a.log.Info("metrics endpoint listening", "addr", a.cfg.Metrics.Addr)
					if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.Error("metrics server error", "error", err)
					}
				}()
			}

			sched.Start()
			a.log.Info("watch started", "sources", len(runners))

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			a.log.Info("shutting down")

			// Stop scheduling and wait for any running pass to complete.
			<-sched.Stop().Done()

			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutting down metrics server: %w", err)
				}
			}

			a.log.Info("stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&bypassCache, "bypass-cache", false, "skip cache reads, still populate the cache")

	return cmd
}
