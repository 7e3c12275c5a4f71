package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/signage-viewer/internal/admin"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		addrFlag    = flag.String("addr", ":5000", "Listen address")
		configFlag  = flag.String("config", "config/config.json", "Path to the configuration record")
		mediaFlag   = flag.String("media", "media", "Media folder")
		verboseFlag = flag.Bool("verbose", false, "Log every request")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := admin.New(*mediaFlag, *configFlag, logger)
	if err != nil {
		logger.Error("admin setup failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              *addrFlag,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting admin server", "addr", *addrFlag, "media", *mediaFlag, "config", *configFlag)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("admin server failed", "error", err)
		os.Exit(1)
	}
}
