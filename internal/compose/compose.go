package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	// Extra still-image decoders for files whose content does not match
	// their extension.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// BlurRadius is the Gaussian blur strength of the backdrop, in display pixels.
	BlurRadius = 20.0

	// backdropDownscale shrinks the backdrop before blurring. The blur
	// hides the lost detail and the kernel runs on 1/16 of the pixels.
	backdropDownscale = 4
)

// Composer builds frames for a fixed display size.
type Composer struct {
	Width  int
	Height int
}

// New creates a Composer for a width x height display.
func New(width, height int) *Composer {
	return &Composer{Width: width, Height: height}
}

// Bounds returns the frame rectangle.
func (c *Composer) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Black returns a new opaque black frame.
func (c *Composer) Black() *image.RGBA {
	frame := image.NewRGBA(c.Bounds())
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return frame
}

// Image decodes the file at path and composes it.
//
// When the file cannot be opened or decoded the result is a black frame
// together with the error, so callers can always display something.
// EXIF orientation is honored.
func (c *Composer) Image(path string) (*image.RGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return c.Black(), fmt.Errorf("decode image %s: %w", path, err)
	}
	frame, err := c.Compose(img)
	if err != nil {
		return c.Black(), fmt.Errorf("compose image %s: %w", path, err)
	}
	return frame, nil
}

// Compose centers img over its own blurred backdrop.
func (c *Composer) Compose(img image.Image) (*image.RGBA, error) {
	if img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	frame := c.Backdrop(img)
	c.place(frame, img, xdraw.CatmullRom)
	return frame, nil
}

// Backdrop stretches src over the whole display and blurs it.
func (c *Composer) Backdrop(src image.Image) *image.RGBA {
	sw := max(c.Width/backdropDownscale, 1)
	sh := max(c.Height/backdropDownscale, 1)

	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, src.Bounds(), draw.Over, nil)

	blurred := imaging.Blur(small, BlurRadius/backdropDownscale)

	frame := c.Black()
	xdraw.BiLinear.Scale(frame, frame.Bounds(), blurred, blurred.Bounds(), draw.Over, nil)
	return frame
}

// VideoFrame writes backdrop with frame centered on top into dst and
// returns dst. A nil or wrongly sized dst is replaced by a new frame.
func (c *Composer) VideoFrame(dst *image.RGBA, frame image.Image, backdrop *image.RGBA) *image.RGBA {
	if dst == nil || dst.Bounds() != c.Bounds() {
		dst = image.NewRGBA(c.Bounds())
	}
	if backdrop != nil && backdrop.Bounds() == dst.Bounds() {
		copy(dst.Pix, backdrop.Pix)
	} else {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	c.place(dst, frame, xdraw.ApproxBiLinear)
	return dst
}

// ForegroundRect returns where a src-sized image lands: full display
// height, aspect preserved, centered horizontally. Wider-than-display
// media overflows on both sides and is clipped.
func (c *Composer) ForegroundRect(src image.Rectangle) image.Rectangle {
	if src.Dy() == 0 {
		return image.Rectangle{}
	}
	ratio := float64(c.Height) / float64(src.Dy())
	w := int(float64(src.Dx()) * ratio)
	x := (c.Width - w) / 2
	return image.Rect(x, 0, x+w, c.Height)
}

func (c *Composer) place(dst *image.RGBA, src image.Image, interp xdraw.Interpolator) {
	dr := c.ForegroundRect(src.Bounds())
	if dr.Empty() {
		return
	}
	interp.Scale(dst, dr, src, src.Bounds(), draw.Over, nil)
}

// Rotate turns src clockwise by degrees. Only multiples of 90 rotate;
// anything else returns src unchanged.
func Rotate(src image.Image, degrees int) image.Image {
	// imaging rotates counter-clockwise.
	switch NormalizeRotation(degrees) {
	case 90:
		return imaging.Rotate270(src)
	case 180:
		return imaging.Rotate180(src)
	case 270:
		return imaging.Rotate90(src)
	default:
		return src
	}
}

// NormalizeRotation maps degrees into [0, 360).
func NormalizeRotation(degrees int) int {
	d := degrees % 360
	if d < 0 {
		d += 360
	}
	return d
}
