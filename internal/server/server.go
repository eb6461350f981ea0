// Package server runs the HTTP API, the gRPC health service, queue workers
// and scheduled tasks until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	"github.com/shashiranjanraj/sweetshop/pkg/grpc"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Options tune what Run starts besides the HTTP server.
type Options struct {
	// Workers is the number of in-process queue workers; 0 disables them.
	Workers int
	// Schedule runs the kernel's background tasks.
	Schedule bool
}

// Start runs until SIGINT or SIGTERM.
func Start(k *kernel.Kernel, opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, k, opts)
}

// Run serves until ctx ends, then drains HTTP, gRPC, workers and tasks.
func Run(ctx context.Context, k *kernel.Kernel, opts Options) error {
	httpLis, err := net.Listen("tcp", ":"+config.AppPort())
	if err != nil {
		return fmt.Errorf("server: listen http: %w", err)
	}

	srv := &http.Server{
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	// Background work stops after HTTP has drained, not on the signal.
	bgCtx, cancelBg := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBg()

	var health *grpc.Server
	if port := config.GRPCPort(); port != "" {
		grpcLis, err := net.Listen("tcp", ":"+port)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("server: listen grpc: %w", err)
		}
		health = grpc.New(k.Checks)
		wg.Add(2)
		go func() {
			defer wg.Done()
			health.Watch(bgCtx, 10*time.Second)
		}()
		go func() {
			defer wg.Done()
			if err := health.Serve(grpcLis); err != nil {
				errCh <- err
			}
		}()
	}

	if opts.Workers > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Queue.Work(bgCtx, opts.Workers)
		}()
	}
	if opts.Schedule {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Schedule.Run(bgCtx)
		}()
	}

	go func() {
		logger.Info("HTTP server starting", "addr", httpLis.Addr().String(), "env", config.AppEnv())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: serve http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", "error", err)
	}
	health.Stop()
	cancelBg()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("background work still running after shutdown timeout")
	}

	logger.Info("server stopped")
	return runErr
}
