package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/handiism/signage-viewer/internal/catalog"
	"github.com/handiism/signage-viewer/internal/compose"
	"github.com/handiism/signage-viewer/internal/config"
	"github.com/handiism/signage-viewer/internal/display"
	"github.com/handiism/signage-viewer/internal/model"
	"github.com/handiism/signage-viewer/internal/playlist"
	"github.com/handiism/signage-viewer/internal/video"
)

// PollInterval is how long the loop waits while idle or blacked out.
const PollInterval = time.Second

// State is what the controller is currently putting on screen.
type State int

const (
	StateIdle State = iota
	StateShowingImage
	StateShowingVideo
	StateBlackScreen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowingImage:
		return "image"
	case StateShowingVideo:
		return "video"
	case StateBlackScreen:
		return "black screen"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Level indicates the severity of an Event.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
)

// Event reports a playback change or problem.
type Event struct {
	Message string
	Level   Level

	// Position at the time of the event. Index is zero-based.
	State State
	Index int
	Total int
	Path  string
}

// Status is a snapshot of the controller's position.
type Status struct {
	State     State
	Index     int
	Total     int
	Path      string
	NightMode bool
	Images    int
	Videos    int
}

// ConfigSource provides the settings for each tick.
type ConfigSource interface {
	Load() *config.Settings
}

// Options configures a Controller. MediaDir, Config, Surface and Videos
// are required.
type Options struct {
	MediaDir string
	Config   ConfigSource
	Shared   *catalog.Shared
	Surface  display.Surface
	Videos   video.Opener

	// Rand drives random ordering. Nil uses the global source.
	Rand *rand.Rand

	// Now is the wall clock used for night mode. Defaults to time.Now.
	Now func() time.Time

	// Sleep waits for d or until ctx ends. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	OnEvent func(Event)
}

// Controller is the playback state machine. Step and Run must be called
// from one goroutine; Status may be called from any.
type Controller struct {
	mediaDir string
	config   ConfigSource
	shared   *catalog.Shared
	surface  display.Surface
	videos   video.Opener
	composer *compose.Composer
	seq      *playlist.Sequencer
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	onEvent  func(Event)

	playlist playlist.Playlist
	index    int
	state    State
	path     string

	// current is the last composed image frame without night overlay.
	// Nil means the next image is presented without a cross-fade.
	current *image.RGBA
	scratch *image.RGBA
	black   *image.RGBA

	status Status
	mu     sync.RWMutex
}

// New creates a Controller. When opts.Shared is nil the controller owns
// a fresh catalog and scans MediaDir on its first tick.
func New(opts Options) *Controller {
	shared := opts.Shared
	if shared == nil {
		shared = catalog.NewShared(nil)
		shared.MarkDirty()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	w, h := opts.Surface.Size()

	c := &Controller{
		mediaDir: opts.MediaDir,
		config:   opts.Config,
		shared:   shared,
		surface:  opts.Surface,
		videos:   opts.Videos,
		composer: compose.New(w, h),
		seq:      playlist.NewSequencer(opts.Rand),
		now:      now,
		sleep:    sleep,
		onEvent:  opts.OnEvent,
		state:    StateIdle,
	}
	c.black = c.composer.Black()
	// First image fades in from black.
	c.current = c.black
	return c
}

// Status returns the current position.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Run steps until ctx is cancelled. It returns nil on cancellation and
// an error only when the display can no longer be used.
func (c *Controller) Run(ctx context.Context) error {
	c.emit(LevelInfo, "Playback started")
	for {
		if err := c.Step(ctx); err != nil {
			if ctx.Err() != nil {
				c.emit(LevelInfo, "Playback stopped")
				return nil
			}
			return err
		}
	}
}

// Step performs one dispatch: a black screen wait, an idle wait, one
// image or one video.
//
// Failures of the item itself are reported as warnings and skipped. The
// returned error is non-nil only when ctx ended or the display closed.
func (c *Controller) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	settings := c.config.Load()

	if settings.BlackScreen {
		return c.blackScreen(ctx, settings)
	}

	if c.shared.TakeDirty() {
		c.refresh(settings)
	}

	c.playlist = c.seq.Apply(c.shared.Catalog(), settings)
	if len(c.playlist) == 0 {
		return c.idle(ctx, settings)
	}

	if c.index >= len(c.playlist) {
		c.index = 0
	}
	entry := c.playlist[c.index]

	err := c.dispatch(ctx, entry, settings)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		if errors.Is(err, display.ErrClosed) {
			return err
		}
		c.emit(LevelWarning, fmt.Sprintf("Skipping %s: %v", entry.Name(), err))
	}

	c.index++
	return nil
}

// dispatch shows one entry. A panic while decoding or composing is
// returned as an error so the item is skipped like any other failure.
func (c *Controller) dispatch(ctx context.Context, entry model.MediaEntry, settings *config.Settings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch entry.Kind {
	case model.KindImage:
		return c.showImage(ctx, entry, settings)
	case model.KindVideo:
		return c.playVideo(ctx, entry, settings)
	}
	return nil
}

// refresh rescans the media folder and restarts the playlist when the
// new one differs from what is playing.
func (c *Controller) refresh(settings *config.Settings) {
	cat, err := catalog.Scan(c.mediaDir)
	if err != nil {
		c.emit(LevelError, fmt.Sprintf("Error scanning %s: %v", c.mediaDir, err))
	}
	c.shared.Replace(cat)

	next := c.seq.Apply(cat, settings)
	if !playlist.Equal(next, c.playlist) {
		c.index = 0
		images, videos := next.Count()
		c.emit(LevelInfo, fmt.Sprintf("Playlist updated: %d images, %d videos", images, videos))
	}
	c.playlist = next
}

func (c *Controller) blackScreen(ctx context.Context, settings *config.Settings) error {
	if c.state != StateBlackScreen {
		c.setState(StateBlackScreen, "", settings)
		c.emit(LevelInfo, "Black screen on")
	}
	return c.holdBlack(ctx, settings)
}

func (c *Controller) idle(ctx context.Context, settings *config.Settings) error {
	if c.state != StateIdle {
		c.index = 0
		c.setState(StateIdle, "", settings)
		c.emit(LevelInfo, "No media to show")
	}
	return c.holdBlack(ctx, settings)
}

// holdBlack presents a black frame and waits one poll interval, also
// when the display reports an error.
func (c *Controller) holdBlack(ctx context.Context, settings *config.Settings) error {
	if err := c.surface.Present(c.dim(c.black, settings)); err != nil {
		if errors.Is(err, display.ErrClosed) {
			return err
		}
		c.emit(LevelError, fmt.Sprintf("Display error: %v", err))
	}
	c.current = c.black
	return c.sleep(ctx, PollInterval)
}

func (c *Controller) showImage(ctx context.Context, entry model.MediaEntry, settings *config.Settings) error {
	frame, err := c.composer.Image(entry.Path)
	if err != nil {
		return err
	}

	c.setState(StateShowingImage, entry.Path, settings)
	c.emit(LevelVerbose, fmt.Sprintf("Showing image %s", entry.Name()))

	next := c.dim(frame, settings)
	if c.current != nil {
		prev := c.dim(c.current, settings)
		if c.scratch == nil || c.scratch.Rect != next.Rect {
			c.scratch = image.NewRGBA(next.Rect)
		}
		for _, t := range compose.FadeSteps(compose.TransitionSteps) {
			compose.BlendInto(c.scratch, prev, next, t)
			if err := c.surface.Present(c.scratch); err != nil {
				return err
			}
			if err := c.sleep(ctx, compose.TransitionDelay); err != nil {
				return err
			}
		}
	} else if err := c.surface.Present(next); err != nil {
		return err
	}
	c.current = frame

	return c.sleep(ctx, settings.ImageHold())
}

func (c *Controller) playVideo(ctx context.Context, entry model.MediaEntry, settings *config.Settings) error {
	stream, err := c.videos.Open(ctx, entry.Path)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			c.emit(LevelWarning, fmt.Sprintf("Decoder for %s: %v", entry.Name(), err))
		}
	}()

	info := stream.Info()
	rotation := video.DetectRotation(info)
	if info.RotationErr != nil {
		rotation = 0
		c.emit(LevelWarning, fmt.Sprintf("Rotation of %s unreadable, using 0°: %v", entry.Name(), info.RotationErr))
	}
	c.emit(LevelVerbose, fmt.Sprintf("Playing video %s (rotation %d°)", entry.Name(), rotation))

	raw, err := stream.ReadFrame()
	if errors.Is(err, io.EOF) {
		return errors.New("video has no frames")
	}
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	frame := compose.Rotate(raw, rotation)
	backdrop := c.composer.Backdrop(frame)

	c.setState(StateShowingVideo, entry.Path, settings)
	c.current = nil

	rate := info.FrameRate
	if rate <= 0 {
		rate = video.DefaultFrameRate
	}
	interval := time.Duration(float64(time.Second) / rate)

	var out *image.RGBA
	for {
		start := time.Now()

		out = c.composer.VideoFrame(out, frame, backdrop)
		if c.nightMode(settings) {
			compose.NightOverlayInto(out, out, compose.NightAlpha)
		}
		if err := c.surface.Present(out); err != nil {
			return err
		}
		if err := c.sleep(ctx, interval-time.Since(start)); err != nil {
			return err
		}

		if c.shared.Dirty() {
			c.emit(LevelInfo, fmt.Sprintf("Media changed, stopping %s", entry.Name()))
			return nil
		}

		raw, err = stream.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		frame = compose.Rotate(raw, rotation)
	}
}

func (c *Controller) nightMode(settings *config.Settings) bool {
	return settings.NightModeActive(c.now())
}

// dim applies the night overlay when night mode is active. frame is
// never modified.
func (c *Controller) dim(frame *image.RGBA, settings *config.Settings) *image.RGBA {
	if !c.nightMode(settings) {
		return frame
	}
	return compose.NightOverlay(frame, compose.NightAlpha)
}

func (c *Controller) setState(state State, path string, settings *config.Settings) {
	c.state = state
	c.path = path

	images, videos := c.playlist.Count()
	night := c.nightMode(settings)

	c.mu.Lock()
	c.status = Status{
		State:     state,
		Index:     c.index,
		Total:     len(c.playlist),
		Path:      path,
		NightMode: night,
		Images:    images,
		Videos:    videos,
	}
	c.mu.Unlock()
}

func (c *Controller) emit(level Level, message string) {
	if c.onEvent == nil {
		return
	}
	c.onEvent(Event{
		Message: message,
		Level:   level,
		State:   c.state,
		Index:   c.index,
		Total:   len(c.playlist),
		Path:    c.path,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
