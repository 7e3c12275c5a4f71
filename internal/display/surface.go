// Package display provides the surfaces composed frames are shown on.
//
// A Surface is exclusively owned by the playback loop while it runs.
// Implementations here (the ebiten window lives in package window):
//   - Framebuffer: Linux /dev/fbN for kiosks without a window system
//   - Discard: accepts and drops frames (dry runs, console-only mode)
package display

import (
	"errors"
	"image"
)

var (
	// ErrNoDisplay is returned when no monitor or framebuffer is usable.
	ErrNoDisplay = errors.New("no display available")

	// ErrClosed is returned by Present after Close.
	ErrClosed = errors.New("display closed")
)

// Surface is a render target of fixed pixel size.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// Present shows frame. The frame must match Size and is not retained
	// after Present returns, so callers may reuse it.
	Present(frame *image.RGBA) error

	// Close releases the surface.
	Close() error
}

// Discard is a Surface that drops every frame.
type Discard struct {
	Width  int
	Height int
}

// Size returns the configured dimensions.
func (d Discard) Size() (int, int) { return d.Width, d.Height }

// Present checks the frame size and drops it.
func (d Discard) Present(frame *image.RGBA) error {
	return CheckSize(frame, d.Width, d.Height)
}

// Close does nothing.
func (d Discard) Close() error { return nil }

// CheckSize returns a *SizeError unless frame is w by h.
func CheckSize(frame *image.RGBA, w, h int) error {
	if frame == nil {
		return errors.New("nil frame")
	}
	b := frame.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return &SizeError{Got: b.Size(), Want: image.Pt(w, h)}
	}
	return nil
}

// SizeError reports a frame that does not match the surface.
type SizeError struct {
	Got, Want image.Point
}

func (e *SizeError) Error() string {
	return "frame is " + e.Got.String() + ", surface is " + e.Want.String()
}

// Pack copies frame's pixels into dst without row padding. dst must hold
// 4*width*height bytes.
func Pack(dst []byte, frame *image.RGBA) {
	b := frame.Bounds()
	row := 4 * b.Dx()
	if frame.Stride == row {
		copy(dst, frame.Pix[:row*b.Dy()])
		return
	}
	for y := 0; y < b.Dy(); y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+row]
		copy(dst[y*row:], src)
	}
}
