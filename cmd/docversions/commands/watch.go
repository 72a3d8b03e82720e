package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docversions/internal/build"
	"git.home.luguber.info/inful/docversions/internal/config"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/metrics"
	"git.home.luguber.info/inful/docversions/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Mode          string        `help:"Run mode; must resolve to development" placeholder:"MODE"`
	Debounce      time.Duration `help:"Quiet period before a rebuild" default:"300ms"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on ADDR (e.g. :9464)" placeholder:"ADDR"`
}

func (w *WatchCmd) Run(ctx context.Context, _ *Global, root *CLI) error {
	app, err := root.load(config.Overrides{})
	if err != nil {
		return err
	}
	mode, err := app.ResolveMode(w.Mode)
	if err != nil {
		return err
	}
	if mode != config.ModeDevelopment {
		return ferrors.ValidationError("watch is only available in development mode").
			WithCause(build.ErrModeRequiresWorkspace).
			WithContext("mode", mode.String()).
			Build()
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsListen != "" {
		prom := metrics.NewPrometheusRecorder(nil)
		recorder = prom
		stop := serveMetrics(ctx, app, w.MetricsListen, prom)
		defer stop()
	}

	svc := app.BuildService(recorder)
	content := app.Env.Resolve(app.Config.Build.ContentDir)
	watcher := watch.New([]string{content}, func(ctx context.Context) error {
		return svc.BuildCurrent(ctx, mode)
	}, app.Logger).WithDebounce(w.Debounce)

	return watcher.Run(ctx)
}

func serveMetrics(ctx context.Context, app *App, addr string, prom *metrics.PrometheusRecorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		app.Logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Metrics server shutdown error", logfields.Error(err))
		}
	}
}
