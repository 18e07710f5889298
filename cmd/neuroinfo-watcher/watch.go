package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/config"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/notify"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/relay"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/server"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/watcher"
)

func watchCmd(a *app) *cobra.Command {
	var (
		interval   time.Duration
		kindNames  []string
		serverAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the API and report events until interrupted",
		Long: `Poll the NeuroInfo API and report stream, schedule and subathon events.

Only the resources needed by the selected events are fetched.

Examples:
  # Watch every event kind
  neuroinfo-watcher watch

  # Watch stream transitions only, polling every minute
  neuroinfo-watcher watch --events stream-online,stream-offline --interval 1m

  # Expose /healthz, /snapshot, /metrics and the /ws relay
  neuroinfo-watcher watch --listen :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if len(kindNames) > 0 {
				cfg.Watch.Events = kindNames
			}
			if serverAddr != "" {
				cfg.Server.Enabled = true
				cfg.Server.Addr = serverAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runWatch(cmd.Context(), cfg, interval, a.logger)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (overrides watch.interval_sec, minimum 10s)")
	cmd.Flags().StringSliceVar(&kindNames, "events", nil, "event kinds to watch (overrides watch.events)")
	cmd.Flags().StringVar(&serverAddr, "listen", "", "enable the HTTP server on this address (overrides server.addr)")

	return cmd
}

// effectiveInterval picks the --interval override when set. Values below the
// watcher minimum are passed through and clamped by the watcher.
func effectiveInterval(cfg *config.Config, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return cfg.Watch.Interval()
}

func runWatch(ctx context.Context, cfg *config.Config, interval time.Duration, logger *zap.Logger) error {
	kinds, err := cfg.Watch.Kinds()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.Token,
		cfg.API.RatePerSecond,
		cfg.API.Timeout(),
		logger,
	)

	w := watcher.New(client, watcher.Options{
		FetchInterval: effectiveInterval(cfg, interval),
		RequestDelay:  cfg.Watch.RequestDelay(),
		Metrics:       m,
	}, logger)

	sinks := []events.Handler{logEvent(logger)}

	if cfg.Notify.Enabled {
		n := notify.New(&cfg.Notify, logger, m)
		sinks = append(sinks, notify.Handler(ctx, n, logger))
		logger.Info("notifications enabled", zap.String("topic", cfg.Notify.Topic))
	}

	var hub *relay.Hub
	if cfg.Server.Enabled {
		hub = relay.NewHub(logger, m)
		go hub.Run(ctx)
		sinks = append(sinks, hub.Publish)
	}

	for _, kind := range kinds {
		w.On(kind, fanOut(sinks), logFetchError(logger, kind))
	}

	logger.Info("watching",
		zap.Strings("events", kindStrings(kinds)),
		zap.Duration("interval", w.FetchInterval()),
		zap.String("baseURL", cfg.API.BaseURL),
	)

	// A tick in flight at shutdown runs to completion; Wait below covers it.
	w.Start(context.WithoutCancel(ctx))

	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		router := server.NewRouter(server.NewServer(w, logger), reg, hub, logger)
		go func() { serverErr <- server.ListenAndServe(ctx, cfg.Server.Addr, router, logger) }()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down watcher...")
	w.Stop()
	w.Wait()

	if cfg.Server.Enabled && runErr == nil {
		if err := <-serverErr; err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}

	logger.Info("watcher stopped")
	return runErr
}

func fanOut(sinks []events.Handler) events.Handler {
	return func(ev events.Event) {
		for _, sink := range sinks {
			sink(ev)
		}
	}
}

func logEvent(logger *zap.Logger) events.Handler {
	return func(ev events.Event) {
		fields := []zap.Field{zap.String("kind", ev.Kind.String())}

		switch {
		case ev.Stream != nil:
			fields = append(fields,
				zap.Bool("live", ev.Stream.IsLive),
				zap.String("title", ev.Stream.Title),
			)
			if ev.Stream.Game != nil {
				fields = append(fields, zap.String("game", ev.Stream.Game.Name))
			}
		case ev.Schedule != nil:
			fields = append(fields,
				zap.Int("year", ev.Schedule.Year),
				zap.Int("week", ev.Schedule.Week),
				zap.Int("entries", len(ev.Schedule.Entries)),
				zap.Bool("final", ev.Schedule.IsFinal),
			)
		case ev.Subathon != nil:
			fields = append(fields,
				zap.Int("year", ev.Subathon.Year),
				zap.Bool("active", ev.Subathon.IsActive),
				zap.Int("subcount", ev.Subathon.Subcount),
			)
		case ev.Goal != nil:
			fields = append(fields,
				zap.Int("year", ev.Goal.Subathon.Year),
				zap.Int("goal", ev.Goal.GoalNumber),
				zap.String("name", ev.Goal.Goal.Name),
				zap.Bool("completed", ev.Goal.Goal.Completed),
				zap.Bool("reached", ev.Goal.Goal.Reached),
			)
		}

		logger.Info("event", fields...)
	}
}

func logFetchError(logger *zap.Logger, kind events.Kind) events.ErrorHandler {
	return func(err error) {
		logger.Debug("event unavailable this tick",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
}

func kindStrings(kinds []events.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
