package video

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name         string
		json         string
		wantW, wantH int
		wantRot      int
		wantTag      bool
		wantRate     float64
		wantRotErr   bool
	}{
		{
			name:  "landscape no tag",
			json:  `{"streams":[{"width":1920,"height":1080,"r_frame_rate":"25/1","avg_frame_rate":"25/1"}]}`,
			wantW: 1920, wantH: 1080, wantRate: 25,
		},
		{
			name:  "legacy rotate tag",
			json:  `{"streams":[{"width":1920,"height":1080,"avg_frame_rate":"30000/1001","tags":{"rotate":"90"}}]}`,
			wantW: 1920, wantH: 1080, wantRot: 90, wantTag: true, wantRate: 30000.0 / 1001,
		},
		{
			name:  "display matrix",
			json:  `{"streams":[{"width":1920,"height":1080,"avg_frame_rate":"0/0","r_frame_rate":"60/1","side_data_list":[{"rotation":-90}]}]}`,
			wantW: 1920, wantH: 1080, wantRot: 90, wantTag: true, wantRate: 60,
		},
		{
			name:  "display matrix upside down",
			json:  `{"streams":[{"width":640,"height":480,"side_data_list":[{},{"rotation":180}]}]}`,
			wantW: 640, wantH: 480, wantRot: -180, wantTag: true, wantRate: DefaultFrameRate,
		},
		{
			name:  "unreadable rotate tag",
			json:  `{"streams":[{"width":1080,"height":1920,"tags":{"rotate":"sideways"}}]}`,
			wantW: 1080, wantH: 1920, wantRate: DefaultFrameRate, wantRotErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseProbe([]byte(tt.json))
			if err != nil {
				t.Fatal(err)
			}
			if info.Width != tt.wantW || info.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", info.Width, info.Height, tt.wantW, tt.wantH)
			}
			if info.Rotation != tt.wantRot || info.HasRotationTag != tt.wantTag {
				t.Errorf("rotation = %d (tag %v), want %d (tag %v)", info.Rotation, info.HasRotationTag, tt.wantRot, tt.wantTag)
			}
			if info.FrameRate != tt.wantRate {
				t.Errorf("FrameRate = %v, want %v", info.FrameRate, tt.wantRate)
			}
			if (info.RotationErr != nil) != tt.wantRotErr {
				t.Errorf("RotationErr = %v, want error %v", info.RotationErr, tt.wantRotErr)
			}
		})
	}
}

func TestParseProbe_Errors(t *testing.T) {
	for _, data := range []string{`not json`, `{"streams":[]}`, `{"streams":[{"width":0,"height":0}]}`} {
		if _, err := ParseProbe([]byte(data)); err == nil {
			t.Errorf("ParseProbe(%s) should fail", data)
		}
	}
}

func TestDetectRotation(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want int
	}{
		{"landscape", Info{Width: 1920, Height: 1080}, 0},
		{"portrait without tag", Info{Width: 1080, Height: 1920}, 90},
		{"square", Info{Width: 500, Height: 500}, 0},
		{"explicit 180 beats portrait", Info{Width: 1080, Height: 1920, Rotation: 180, HasRotationTag: true}, 180},
		{"explicit 0 beats portrait", Info{Width: 1080, Height: 1920, Rotation: 0, HasRotationTag: true}, 0},
		{"negative tag", Info{Width: 1920, Height: 1080, Rotation: -90, HasRotationTag: true}, 270},
		{"over a full turn", Info{Width: 1920, Height: 1080, Rotation: 450, HasRotationTag: true}, 90},
		{"unknown size", Info{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectRotation(tt.info); got != tt.want {
				t.Errorf("DetectRotation() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := map[string]float64{
		"30/1":  30,
		"25":    25,
		"0/0":   0,
		"":      0,
		"24/0":  0,
		"abc/1": 0,
	}
	for in, want := range tests {
		if got := parseRate(in); got != want {
			t.Errorf("parseRate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRawStream(t *testing.T) {
	info := Info{Width: 2, Height: 1, FrameRate: 30}
	data := []byte{
		1, 2, 3, 255, 4, 5, 6, 255, // frame 1
		7, 8, 9, 255, 10, 11, 12, 255, // frame 2
		13, 14, // truncated trailer
	}
	s := newRawStream(bytes.NewReader(data), info)

	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Pix[0] != 1 || frame.Pix[4] != 4 {
		t.Errorf("frame 1 = %v", frame.Pix)
	}
	frame, err = s.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	if frame.Pix[0] != 7 {
		t.Errorf("frame 2 = %v", frame.Pix)
	}
	if _, err := s.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("third ReadFrame() error = %v, want io.EOF", err)
	}
	if _, err := s.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame() after EOF = %v, want io.EOF", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestFFmpeg_OpenProbeFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ffprobe")
	f := &FFmpeg{FFmpegPath: "ffmpeg", FFprobePath: missing}

	stream, err := f.Open(context.Background(), "clip.mp4")
	if err == nil {
		stream.Close()
		t.Fatal("Open() with an unusable ffprobe should fail")
	}
	if !strings.Contains(err.Error(), "probe video") {
		t.Errorf("Open() error = %v, want probe context", err)
	}
}

func TestFFmpeg_OpenGeneratedClip(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not installed")
	}

	clip := filepath.Join(t.TempDir(), "clip.mp4")
	gen := exec.Command(ffmpeg, "-v", "error", "-f", "lavfi", "-i", "testsrc=size=32x48:rate=10:duration=0.5",
		"-pix_fmt", "yuv420p", clip)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test clip: %v: %s", err, out)
	}

	stream, err := (&FFmpeg{FFmpegPath: ffmpeg, FFprobePath: ffprobe}).Open(context.Background(), clip)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	info := stream.Info()
	if info.Width != 32 || info.Height != 48 {
		t.Fatalf("Info() size = %dx%d, want 32x48", info.Width, info.Height)
	}
	if DetectRotation(info) != 90 {
		t.Errorf("portrait clip without tag should infer 90°")
	}

	frames := 0
	for {
		frame, err := stream.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if frame.Bounds().Dx() != 32 || frame.Bounds().Dy() != 48 {
			t.Fatalf("frame size = %v", frame.Bounds())
		}
		frames++
	}
	if frames == 0 {
		t.Error("no frames decoded")
	}
	if err := stream.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
