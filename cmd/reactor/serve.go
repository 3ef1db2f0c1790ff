package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/scenario"
	"github.com/vango-dev/reactor/pkg/devtools"
	"github.com/vango-dev/reactor/pkg/reactor"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(verbose *bool) *cobra.Command {
	var (
		addr   string
		replay bool
	)

	cmd := &cobra.Command{
		Use:   "serve <scenario.yaml>",
		Short: "Serve the devtools API for a scenario engine",
		Long: `Build an engine from a scenario and serve it over HTTP.

Endpoints:
  GET  /state              state snapshot
  GET  /getters            getter validity and dependencies
  GET  /getters/{name}     evaluate a getter
  POST /mutations/{name}   commit a mutation with a JSON payload
  GET  /events             websocket stream of mutation events
  GET  /metrics            Prometheus metrics

Examples:
  reactor serve todo.yaml
  reactor serve todo.yaml --addr=:8080 --replay`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, args[0], addr, replay, *verbose)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":7070", "Address to listen on")
	cmd.Flags().BoolVar(&replay, "replay", false, "Commit the scenario's steps before serving")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, path, addr string, replay, verbose bool) error {
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	eng, err := s.Engine(reactor.Options{
		Logger:  logger,
		Metrics: reactor.NewMetrics(reactor.WithRegistry(registry)),
	})
	if err != nil {
		return err
	}

	if replay {
		if _, err := s.Run(eng, nil); err != nil {
			return err
		}
	}

	dt := devtools.New(eng, devtools.Config{
		Logger:         logger,
		Gatherer:       registry,
		RequestLogging: verbose,
	})
	defer dt.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           dt.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	out := cmd.OutOrStdout()
	success(out, "Serving %s", path)
	info(out, "http://%s", displayAddr(addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	info(out, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
