package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Stream delivers decoded frames of one video.
type Stream interface {
	// Info returns the probed metadata.
	Info() Info

	// ReadFrame returns the next frame, or io.EOF after the last one.
	// The frame is only valid until the next call.
	ReadFrame() (*image.RGBA, error)

	// Close stops decoding and releases the decoder.
	Close() error
}

// Opener starts decoding a video file.
type Opener interface {
	Open(ctx context.Context, path string) (Stream, error)
}

// FFmpeg opens videos with the ffmpeg and ffprobe executables.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpeg creates an FFmpeg opener using the executables on PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}
}

// Open probes path and starts an ffmpeg process emitting raw RGBA frames.
// A failed probe leaves the frame size unknown and fails Open; only an
// unreadable rotation tag is tolerated, via Info.RotationErr.
func (f *FFmpeg) Open(ctx context.Context, path string) (Stream, error) {
	info, err := Probe(ctx, f.FFprobePath, path)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	stderr := &limitedBuffer{max: 4096}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	s := newRawStream(stdout, info)
	s.closer = func() error {
		if !s.eof && cmd.Process != nil {
			// Stopped early on purpose; the exit status is meaningless.
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return nil
		}
		if err := cmd.Wait(); err != nil {
			if msg := stderr.String(); msg != "" {
				return fmt.Errorf("ffmpeg %s: %w: %s", path, err, msg)
			}
			return fmt.Errorf("ffmpeg %s: %w", path, err)
		}
		return nil
	}
	return s, nil
}

// rawStream slices a byte stream of packed RGBA frames.
type rawStream struct {
	r      *bufio.Reader
	info   Info
	frame  *image.RGBA
	eof    bool
	closer func() error
	once   sync.Once
	err    error
}

func newRawStream(r io.Reader, info Info) *rawStream {
	return &rawStream{
		r:     bufio.NewReaderSize(r, info.Width*4*16),
		info:  info,
		frame: image.NewRGBA(image.Rect(0, 0, info.Width, info.Height)),
	}
}

func (s *rawStream) Info() Info { return s.info }

func (s *rawStream) ReadFrame() (*image.RGBA, error) {
	if s.eof {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(s.r, s.frame.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.eof = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return s.frame, nil
}

func (s *rawStream) Close() error {
	s.once.Do(func() {
		if s.closer != nil {
			s.err = s.closer()
		}
	})
	return s.err
}

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
