package compose

import (
	"image"
	"time"
)

const (
	// NightAlpha is the opacity of the night-mode black overlay.
	NightAlpha = 0.4

	// TransitionSteps is the number of frames in a cross-fade.
	TransitionSteps = 10

	// TransitionDelay is the time each cross-fade frame stays on screen.
	TransitionDelay = 50 * time.Millisecond
)

// NightOverlay returns a new frame with black blended over frame:
// out = frame*(1-alpha) + black*alpha. The alpha channel is kept.
// alpha <= 0 yields an exact copy; frame is never modified.
func NightOverlay(frame *image.RGBA, alpha float64) *image.RGBA {
	out := image.NewRGBA(frame.Rect)
	NightOverlayInto(out, frame, alpha)
	return out
}

// NightOverlayInto is NightOverlay writing into dst, which must have the
// same bounds as frame. dst may be frame itself.
func NightOverlayInto(dst, frame *image.RGBA, alpha float64) {
	if alpha <= 0 {
		if dst != frame {
			copy(dst.Pix, frame.Pix)
		}
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	var lut [256]uint8
	keep := 1 - alpha
	for v := range lut {
		lut[v] = uint8(float64(v)*keep + 0.5)
	}

	for i := 0; i+3 < len(frame.Pix); i += 4 {
		dst.Pix[i] = lut[frame.Pix[i]]
		dst.Pix[i+1] = lut[frame.Pix[i+1]]
		dst.Pix[i+2] = lut[frame.Pix[i+2]]
		dst.Pix[i+3] = frame.Pix[i+3]
	}
}

// Blend returns a*(1-t) + b*t as a new frame.
//
// t is clamped to [0, 1]; t == 0 reproduces a and t == 1 reproduces b
// exactly. When the frames differ in size, a copy of b is returned.
func Blend(a, b *image.RGBA, t float64) *image.RGBA {
	out := image.NewRGBA(b.Rect)
	BlendInto(out, a, b, t)
	return out
}

// BlendInto is Blend writing into dst, which must match b's bounds.
func BlendInto(dst, a, b *image.RGBA, t float64) {
	if a == nil || a.Rect != b.Rect || len(a.Pix) != len(b.Pix) {
		copy(dst.Pix, b.Pix)
		return
	}
	switch {
	case t <= 0:
		copy(dst.Pix, a.Pix)
		return
	case t >= 1:
		copy(dst.Pix, b.Pix)
		return
	}

	w := uint32(t*256 + 0.5)
	inv := 256 - w
	for i := range b.Pix {
		dst.Pix[i] = uint8((uint32(a.Pix[i])*inv + uint32(b.Pix[i])*w + 128) >> 8)
	}
}

// FadeSteps returns the blend weights of a cross-fade with n frames,
// evenly spaced from 0 to 1 inclusive.
func FadeSteps(n int) []float64 {
	if n < 2 {
		return []float64{1}
	}
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = float64(i) / float64(n-1)
	}
	return steps
}
