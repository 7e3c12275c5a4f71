package display

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func fakeFramebuffer(t *testing.T, size, bpp string) (device, sysfs string) {
	t.Helper()
	root := t.TempDir()
	sysfs = filepath.Join(root, "sys")
	attr := filepath.Join(sysfs, "fb0")
	if err := os.MkdirAll(attr, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, value := range map[string]string{"virtual_size": size + "\n", "bits_per_pixel": bpp + "\n"} {
		if err := os.WriteFile(filepath.Join(attr, name), []byte(value), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	device = filepath.Join(root, "fb0")
	if err := os.WriteFile(device, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return device, sysfs
}

func TestFramebuffer_32bpp(t *testing.T) {
	device, sysfs := fakeFramebuffer(t, "2,1", "32")
	fb, err := openFramebuffer(device, sysfs)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Close()

	if w, h := fb.Size(); w != 2 || h != 1 {
		t.Fatalf("Size() = %dx%d, want 2x1", w, h)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 2, 1))
	frame.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	frame.SetRGBA(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})
	if err := fb.Present(frame); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(device)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{30, 20, 10, 255, 60, 50, 40, 255}
	if string(got) != string(want) {
		t.Errorf("device bytes = %v, want %v", got, want)
	}
}

func TestFramebuffer_16bpp(t *testing.T) {
	device, sysfs := fakeFramebuffer(t, "1,1", "16")
	fb, err := openFramebuffer(device, sysfs)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Close()

	frame := image.NewRGBA(image.Rect(0, 0, 1, 1))
	frame.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 255, A: 255})
	if err := fb.Present(frame); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(device)
	// 0xF81F little-endian
	if len(got) != 2 || got[0] != 0x1F || got[1] != 0xF8 {
		t.Errorf("device bytes = %x, want 1ff8", got)
	}
}

func TestFramebuffer_Unusable(t *testing.T) {
	tests := []struct {
		name, size, bpp string
	}{
		{"bad size", "wide", "32"},
		{"zero size", "0,0", "32"},
		{"unsupported depth", "2,2", "24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, sysfs := fakeFramebuffer(t, tt.size, tt.bpp)
			if _, err := openFramebuffer(device, sysfs); !errors.Is(err, ErrNoDisplay) {
				t.Errorf("openFramebuffer() error = %v, want ErrNoDisplay", err)
			}
		})
	}

	if _, err := openFramebuffer("/dev/fb9", t.TempDir()); !errors.Is(err, ErrNoDisplay) {
		t.Errorf("missing sysfs entry should be ErrNoDisplay, got %v", err)
	}
}

func TestDiscard_ChecksSize(t *testing.T) {
	d := Discard{Width: 4, Height: 3}

	if err := d.Present(image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Errorf("Present() = %v, want nil", err)
	}

	err := d.Present(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	var sizeErr *SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Present() error = %v, want SizeError", err)
	}
	if sizeErr.Want != image.Pt(4, 3) {
		t.Errorf("SizeError.Want = %v", sizeErr.Want)
	}
}

func TestPack_Subimage(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 4, 2))
	big.SetRGBA(2, 1, color.RGBA{R: 9, A: 255})
	sub := big.SubImage(image.Rect(2, 0, 4, 2)).(*image.RGBA)

	dst := make([]byte, 4*2*2)
	Pack(dst, sub)
	if dst[8] != 9 {
		t.Errorf("Pack did not honor stride: %v", dst)
	}
}

func TestFramebuffer_PresentAfterClose(t *testing.T) {
	device, sysfs := fakeFramebuffer(t, "1,1", "32")
	fb, err := openFramebuffer(device, sysfs)
	if err != nil {
		t.Fatal(err)
	}
	if err := fb.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fb.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}

	err = fb.Present(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Present after Close = %v, want ErrClosed", err)
	}
}
