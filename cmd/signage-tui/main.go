package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/handiism/signage-viewer/internal/catalog"
	"github.com/handiism/signage-viewer/internal/config"
	"github.com/handiism/signage-viewer/internal/display"
	"github.com/handiism/signage-viewer/internal/player"
	"github.com/handiism/signage-viewer/internal/tui"
	"github.com/handiism/signage-viewer/internal/video"
	"github.com/handiism/signage-viewer/internal/watch"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configFlag = flag.String("config", "config/config.json", "Path to the configuration record")
		mediaFlag  = flag.String("media", "media", "Media folder to play")
		fbFlag     = flag.String("fb", "/dev/fb0", "Framebuffer device to render to")
		dryRunFlag = flag.Bool("dry-run", false, "Run playback without a display")
		widthFlag  = flag.Int("width", 1920, "Screen width in -dry-run mode")
		heightFlag = flag.Int("height", 1080, "Screen height in -dry-run mode")
		logFlag    = flag.String("log", "", "Write a log to this file")
	)
	flag.Parse()

	if err := run(*configFlag, *mediaFlag, *fbFlag, *dryRunFlag, *widthFlag, *heightFlag, *logFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, mediaDir, fbDevice string, dryRun bool, width, height int, logPath string) error {
	// The console owns the terminal; log to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var surface display.Surface
	if dryRun {
		surface = display.Discard{Width: width, Height: height}
	} else {
		fb, err := display.OpenFramebuffer(fbDevice)
		if err != nil {
			return fmt.Errorf("%w (use -dry-run to play without a display)", err)
		}
		surface = fb
	}
	defer surface.Close()

	cat, err := catalog.Scan(mediaDir)
	if err != nil {
		return err
	}
	shared := catalog.NewShared(cat)

	watcher, err := watch.New(mediaDir, shared,
		watch.WithConfigFile(configPath),
		watch.WithErrorHandler(func(err error) { logger.Warn("watcher", "error", err) }),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx, player.Options{
			MediaDir: mediaDir,
			Config: config.NewStore(configPath, func(err error) {
				logger.Warn("config unreadable, using defaults", "error", err)
			}),
			Shared:  shared,
			Surface: surface,
			Videos:  video.NewFFmpeg(),
			OnEvent: player.LogEvents(logger),
		})
	})
	return g.Wait()
}
