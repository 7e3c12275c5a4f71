package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultFrameRate is used when the container does not report a usable rate.
const DefaultFrameRate = 30.0

// Info describes the first video stream of a file.
type Info struct {
	// Width and Height are the coded frame dimensions.
	Width  int
	Height int

	// Rotation is the clockwise display rotation from the container,
	// valid only when HasRotationTag is set.
	Rotation       int
	HasRotationTag bool

	// RotationErr is set when a rotation tag exists but cannot be read.
	// The tag is then ignored.
	RotationErr error

	// FrameRate is in frames per second, never zero.
	FrameRate float64
}

// DetectRotation returns the clockwise rotation to apply to decoded frames.
//
// An explicit tag wins regardless of dimensions. Otherwise a frame taller
// than wide infers 90°. Everything else is 0°.
func DetectRotation(info Info) int {
	if info.HasRotationTag {
		return normalize(info.Rotation)
	}
	if info.Width > 0 && info.Height > info.Width {
		return 90
	}
	return 0
}

func normalize(degrees int) int {
	// Snap to the nearest quarter turn; containers sometimes carry -90.0001.
	q := int(math.Round(float64(degrees)/90)) * 90
	q %= 360
	if q < 0 {
		q += 360
	}
	return q
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	Tags         map[string]string `json:"tags"`
	SideDataList []struct {
		Rotation *float64 `json:"rotation"`
	} `json:"side_data_list"`
}

// Probe runs ffprobe on path and parses its first video stream.
func Probe(ctx context.Context, ffprobe, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate:stream_tags=rotate:stream_side_data=rotation",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Info{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbe(out)
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(data []byte) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Info{}, errors.New("no video stream")
	}
	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return Info{}, fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}

	info := Info{
		Width:     s.Width,
		Height:    s.Height,
		FrameRate: parseRate(s.AvgFrameRate),
	}
	if info.FrameRate == 0 {
		info.FrameRate = parseRate(s.RFrameRate)
	}
	if info.FrameRate == 0 {
		info.FrameRate = DefaultFrameRate
	}

	// The legacy rotate tag is clockwise; the display matrix angle is
	// counter-clockwise.
	if tag, ok := s.Tags["rotate"]; ok {
		deg, err := strconv.ParseFloat(strings.TrimSpace(tag), 64)
		if err != nil {
			info.RotationErr = fmt.Errorf("rotate tag %q: %w", tag, err)
		} else {
			info.Rotation = int(math.Round(deg))
			info.HasRotationTag = true
		}
	}
	if !info.HasRotationTag {
		for _, sd := range s.SideDataList {
			if sd.Rotation != nil {
				info.Rotation = int(math.Round(-*sd.Rotation))
				info.HasRotationTag = true
				break
			}
		}
	}
	return info, nil
}

// parseRate reads "30000/1001" or "25". Zero means unknown.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}
