package display

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Framebuffer writes frames to a Linux framebuffer device.
//
// Geometry is read from sysfs (/sys/class/graphics/fbN). 32 bpp devices
// receive BGRA, 16 bpp devices RGB565.
type Framebuffer struct {
	dev    *os.File
	width  int
	height int
	bpp    int
	stride int
	buf    []byte
}

// OpenFramebuffer opens device (for example "/dev/fb0").
func OpenFramebuffer(device string) (*Framebuffer, error) {
	return openFramebuffer(device, "/sys/class/graphics")
}

func openFramebuffer(device, sysfs string) (*Framebuffer, error) {
	attr := filepath.Join(sysfs, filepath.Base(device))

	size, err := readAttr(attr, "virtual_size")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	ws, hs, ok := strings.Cut(size, ",")
	if !ok {
		return nil, fmt.Errorf("%w: bad virtual_size %q", ErrNoDisplay, size)
	}
	width, err1 := strconv.Atoi(ws)
	height, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bad virtual_size %q", ErrNoDisplay, size)
	}

	bppStr, err := readAttr(attr, "bits_per_pixel")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	bpp, err := strconv.Atoi(bppStr)
	if err != nil || (bpp != 16 && bpp != 32) {
		return nil, fmt.Errorf("%w: unsupported bits_per_pixel %q", ErrNoDisplay, bppStr)
	}

	stride := width * bpp / 8
	if s, err := readAttr(attr, "stride"); err == nil {
		if n, err := strconv.Atoi(s); err == nil && n >= stride {
			stride = n
		}
	}

	dev, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}

	return &Framebuffer{
		dev:    dev,
		width:  width,
		height: height,
		bpp:    bpp,
		stride: stride,
		buf:    make([]byte, stride*height),
	}, nil
}

func readAttr(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Size returns the visible resolution.
func (fb *Framebuffer) Size() (int, int) { return fb.width, fb.height }

// Present converts frame to the device format and writes it.
func (fb *Framebuffer) Present(frame *image.RGBA) error {
	if err := CheckSize(frame, fb.width, fb.height); err != nil {
		return err
	}

	for y := 0; y < fb.height; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+4*fb.width]
		dst := fb.buf[y*fb.stride:]
		if fb.bpp == 32 {
			for x := 0; x < fb.width; x++ {
				dst[4*x] = src[4*x+2]
				dst[4*x+1] = src[4*x+1]
				dst[4*x+2] = src[4*x]
				dst[4*x+3] = 0xff
			}
			continue
		}
		for x := 0; x < fb.width; x++ {
			r, g, b := uint16(src[4*x]), uint16(src[4*x+1]), uint16(src[4*x+2])
			px := (r>>3)<<11 | (g>>2)<<5 | b>>3
			dst[2*x] = byte(px)
			dst[2*x+1] = byte(px >> 8)
		}
	}

	if _, err := fb.dev.WriteAt(fb.buf, 0); err != nil {
		if errors.Is(err, os.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("write framebuffer: %w", err)
	}
	return nil
}

// Close closes the device. Closing twice is a no-op.
func (fb *Framebuffer) Close() error {
	if err := fb.dev.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
