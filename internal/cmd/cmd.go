// Package cmd is the corebridge CLI entry point: option parsing, logger
// construction, wiring every collaborator together, and graceful shutdown.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"

	"github.com/streamgate/corebridge/internal/api"
	"github.com/streamgate/corebridge/internal/bridge"
	"github.com/streamgate/corebridge/internal/diag"
	"github.com/streamgate/corebridge/internal/dnsprobe"
	"github.com/streamgate/corebridge/internal/dnsresolve"
	"github.com/streamgate/corebridge/internal/orchestrator"
	"github.com/streamgate/corebridge/internal/settings"
	"github.com/streamgate/corebridge/internal/supervisor"
)

// version is set at build time via -ldflags.
var version = "dev"

// Main is the entrypoint of the corebridge CLI.
func Main() {
	opts, exitCode, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, fmt.Errorf("parsing options: %w", err))
		os.Exit(exitCode)
	}
	if opts == nil {
		os.Exit(exitCode)
	}
	if opts.Version {
		fmt.Printf("corebridge version: %s\n", version)
		os.Exit(osutil.ExitCodeSuccess)
	}

	logOutput := os.Stdout
	if opts.LogOutput != "" {
		// #nosec G302 -- Trust the file path given in the configuration.
		logOutput, err = os.OpenFile(opts.LogOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, fmt.Errorf("cannot create log file: %w", err))
			os.Exit(osutil.ExitCodeArgumentError)
		}
		defer func() { _ = logOutput.Close() }()
	}

	lvl := slog.LevelInfo
	if opts.Verbose {
		lvl = slog.LevelDebug
	}

	l := slogutil.New(&slogutil.Config{
		Output:       logOutput,
		Format:       slogutil.FormatDefault,
		Level:        lvl,
		AddTimestamp: true,
	})
	l.InfoContext(context.Background(), "corebridge starting", "version", version)

	if opts.Pprof {
		runPprof(l)
	}

	api.Version = version

	if err := run(context.Background(), l, opts); err != nil {
		l.Error("running corebridge", slogutil.KeyError, err)
		os.Exit(osutil.ExitCodeFailure)
	}
}

// run wires every collaborator and blocks until a termination signal or an
// unrecoverable startup error.
func run(ctx context.Context, l *slog.Logger, opts *Options) (err error) {
	store, err := settings.Open(opts.SettingsPath)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}

	stats := diag.NewRegistry()
	if loadErr := stats.Load(opts.StatsPath); loadErr != nil {
		l.Warn("loading stats", slogutil.KeyError, loadErr)
	}

	resolver := dnsresolve.New()
	probe := dnsprobe.NewEngine()

	br := bridge.New(opts.HTTPProxyPort, opts.SOCKSProxyPort, opts.UpstreamPort, func() (string, string) {
		doc := store.Get()
		if !doc.Socks5Auth.Enabled {
			return "", ""
		}
		return string(doc.Socks5Auth.Username), string(doc.Socks5Auth.Password)
	})

	sup := supervisor.New(func(port int) {
		log.Info("tunnel client reported port %d in use, reclaiming", port)
		supervisor.KillPorts(port)
	})

	orch := orchestrator.New(store, sup, br, resolver)
	orch.SetBinaryOverride(opts.BinaryPath)
	orch.OnStatusUpdate(func(e orchestrator.Event) {
		l.Info("connection status", "status", e.Details.Status, "message", e.Details.Message)
	})

	server := api.New(orch, store, probe, br, stats)
	sched := server.StartJobs(opts.LogOutput, opts.StatsPath)
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              opts.AdminListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		l.Info("admin API listening", "addr", opts.AdminListenAddr)
		serveErrCh <- httpServer.ListenAndServe()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signalCh:
		l.Info("received signal, shutting down", "signal", sig)
	case serveErr := <-serveErrCh:
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			l.Error("admin API failed", slogutil.KeyError, serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	orch.Cleanup()
	_ = stats.Save(opts.StatsPath)

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("shutting down admin API: %w", shutdownErr)
	}
	return nil
}

// runPprof runs the pprof server on localhost:6060, matching
// internal/cmd/cmd.go's own runPprof.
func runPprof(l *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
	mux.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))

	go func() {
		pprofAddr := "localhost:6060"
		l.Info("starting pprof", "addr", pprofAddr)

		srv := &http.Server{
			Addr:        pprofAddr,
			ReadTimeout: 60 * time.Second,
			Handler:     mux,
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("pprof failed to listen", "addr", pprofAddr, slogutil.KeyError, err)
		}
	}()
}
