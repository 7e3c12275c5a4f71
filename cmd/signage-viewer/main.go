package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/handiism/signage-viewer/internal/catalog"
	"github.com/handiism/signage-viewer/internal/config"
	"github.com/handiism/signage-viewer/internal/display"
	"github.com/handiism/signage-viewer/internal/display/window"
	"github.com/handiism/signage-viewer/internal/player"
	"github.com/handiism/signage-viewer/internal/video"
	"github.com/handiism/signage-viewer/internal/watch"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "config/config.json", "Path to the configuration record")
		mediaFlag   = flag.String("media", "media", "Media folder to play")
		fbFlag      = flag.String("fb", "", "Framebuffer device to render to (e.g. /dev/fb0) instead of a window")
		ffmpegFlag  = flag.String("ffmpeg", "ffmpeg", "ffmpeg executable")
		ffprobeFlag = flag.String("ffprobe", "ffprobe", "ffprobe executable")
		verboseFlag = flag.Bool("verbose", false, "Log every item shown")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupted, stopping")
		cancel()
	}()

	err := run(ctx, cancel, logger, options{
		configPath: *configFlag,
		mediaDir:   *mediaFlag,
		fbDevice:   *fbFlag,
		ffmpeg:     *ffmpegFlag,
		ffprobe:    *ffprobeFlag,
	})
	if err != nil {
		logger.Error("viewer failed", "error", err)
		if errors.Is(err, display.ErrNoDisplay) {
			fmt.Fprintln(os.Stderr, "No display found. Use -fb to render to a framebuffer device.")
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	mediaDir   string
	fbDevice   string
	ffmpeg     string
	ffprobe    string
}

func run(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, opts options) error {
	if info, err := os.Stat(opts.mediaDir); err != nil {
		return fmt.Errorf("media folder: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("media folder %s is not a directory", opts.mediaDir)
	}
	for _, bin := range []string{opts.ffmpeg, opts.ffprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			logger.Warn("video decoder not found, videos will be skipped", "executable", bin)
		}
	}

	var (
		surface display.Surface
		win     *window.Window
	)
	if opts.fbDevice != "" {
		fb, err := display.OpenFramebuffer(opts.fbDevice)
		if err != nil {
			return err
		}
		surface = fb
	} else {
		w, err := window.New("Signage Viewer", cancel)
		if err != nil {
			return err
		}
		surface, win = w, w
	}
	defer surface.Close()

	width, height := surface.Size()
	logger.Info("display ready", "width", width, "height", height)

	cat, err := catalog.Scan(opts.mediaDir)
	if err != nil {
		return err
	}
	shared := catalog.NewShared(cat)

	watcher, err := watch.New(opts.mediaDir, shared,
		watch.WithConfigFile(opts.configPath),
		watch.WithErrorHandler(func(err error) { logger.Warn("watcher", "error", err) }),
	)
	if err != nil {
		return err
	}

	controller := player.New(player.Options{
		MediaDir: opts.mediaDir,
		Config:   config.NewStore(opts.configPath, configErrorLogger(logger)),
		Shared:   shared,
		Surface:  surface,
		Videos:   &video.FFmpeg{FFmpegPath: opts.ffmpeg, FFprobePath: opts.ffprobe},
		OnEvent:  player.LogEvents(logger),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		defer surface.Close()
		return controller.Run(gctx)
	})

	// The window must own the main goroutine.
	if win != nil {
		if err := win.Run(gctx); err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("window: %w", err)
		}
		cancel()
	}

	return g.Wait()
}

// configErrorLogger logs config read failures once per distinct message;
// the record is re-read every tick.
func configErrorLogger(logger *slog.Logger) func(error) {
	var last string
	return func(err error) {
		if msg := err.Error(); msg != last {
			last = msg
			logger.Warn("config unreadable, using defaults", "error", err)
		}
	}
}
