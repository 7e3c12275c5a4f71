// Package window shows frames in a full-screen ebiten window. It needs a
// window system and cgo, so only the viewer binary imports it.
package window

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/handiism/signage-viewer/internal/display"
)

var _ display.Surface = (*Window)(nil)

// Window is a full-screen, borderless ebiten window sized to the primary
// monitor. It implements display.Surface and ebiten.Game.
//
// Present may be called from any goroutine; Run must be called from the
// main goroutine.
type Window struct {
	title  string
	width  int
	height int
	onQuit func()

	mu      sync.Mutex
	pending []byte
	fresh   bool

	canvas    *ebiten.Image
	done      chan struct{}
	closeOnce sync.Once
}

// New prepares a window covering the primary monitor.
//
// onQuit is called once when the operator presses q or Escape. New
// fails with ErrNoDisplay when no monitor is detected.
func New(title string, onQuit func()) (*Window, error) {
	m := ebiten.Monitor()
	if m == nil {
		return nil, display.ErrNoDisplay
	}
	w, h := m.Size()
	scale := m.DeviceScaleFactor()
	if scale > 0 {
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: monitor %q reports %dx%d", display.ErrNoDisplay, m.Name(), w, h)
	}

	return &Window{
		title:   title,
		width:   w,
		height:  h,
		onQuit:  onQuit,
		pending: make([]byte, 4*w*h),
		done:    make(chan struct{}),
	}, nil
}

// Size returns the monitor resolution in physical pixels.
func (w *Window) Size() (int, int) { return w.width, w.height }

// Present queues frame for the next redraw. Only the latest frame is kept.
func (w *Window) Present(frame *image.RGBA) error {
	select {
	case <-w.done:
		return display.ErrClosed
	default:
	}
	if err := display.CheckSize(frame, w.width, w.height); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	display.Pack(w.pending, frame)
	w.fresh = true
	return nil
}

// Close ends Run at the next update.
func (w *Window) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

// Run opens the window and blocks until Close, ctx cancellation or the
// quit key.
func (w *Window) Run(ctx context.Context) error {
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetFullscreen(true)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetScreenClearedEveryFrame(false)

	stop := context.AfterFunc(ctx, func() { w.Close() })
	defer stop()

	return ebiten.RunGame(w)
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	select {
	case <-w.done:
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if w.onQuit != nil {
			w.onQuit()
		}
		w.Close()
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.canvas == nil {
		w.canvas = ebiten.NewImage(w.width, w.height)
	}

	w.mu.Lock()
	if w.fresh {
		w.canvas.WritePixels(w.pending)
		w.fresh = false
	}
	w.mu.Unlock()

	screen.DrawImage(w.canvas, nil)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}
