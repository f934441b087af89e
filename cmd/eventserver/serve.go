package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/realtime-event-server/internal/config"
	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
	"github.com/alfredjeanlab/realtime-event-server/internal/producer"
	"github.com/alfredjeanlab/realtime-event-server/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event delivery server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		manager := eventbus.NewManager(logger)
		router := transport.NewRouter(manager, cfg, logger)

		httpServer := &http.Server{
			Addr:    cfg.Addr(),
			Handler: router,
		}

		// Spawn the illustrative background producers; on shutdown they are
		// cancelled and drained before the HTTP server stops accepting.
		producersCtx, cancelProducers := context.WithCancel(context.Background())
		producerDone := startProducers(producersCtx, manager, logger)

		go func() {
			logger.Info("event server listening", "addr", cfg.Addr())
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "err", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		cancelProducers()
		select {
		case <-producerDone:
		case <-time.After(5 * time.Second):
			logger.Warn("producers did not drain within grace period")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// startProducers launches the illustrative producer set and relays every
// event each one yields into the Connection Manager's fan-out. The
// returned channel closes once every producer has drained after ctx
// cancellation.
func startProducers(ctx context.Context, manager *eventbus.Manager, logger *slog.Logger) <-chan struct{} {
	producers := []producer.Producer{
		&producer.MetricsProducer{Source: "metrics"},
	}

	var wg sync.WaitGroup
	for _, p := range producers {
		stream := producer.Start(ctx, p)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range stream {
				manager.PushEvent(e)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		logger.Info("all producers drained")
		close(done)
	}()
	return done
}
