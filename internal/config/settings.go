package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	ioutils "github.com/handiism/signage-viewer/internal/io"
)

// Order is the value of the display_order option.
type Order string

const (
	// OrderSequential plays entries in file name order.
	OrderSequential Order = "sequential"

	// OrderRandom reshuffles entries every time the playlist is built.
	OrderRandom Order = "random"
)

// Option keys of the configuration record.
const (
	KeyShowImages         = "show_images"
	KeyShowVideos         = "show_videos"
	KeyDisplayOrder       = "display_order"
	KeyImageDuration      = "image_duration"
	KeyApplyAutoNightMode = "apply_auto_night_mode"
	KeyBlackScreen        = "black_screen"
	KeyNightStartHour     = "night_start_hour"
	KeyNightEndHour       = "night_end_hour"
)

// Settings holds the recognized options of the configuration record.
//
// Keys the viewer does not know about are kept verbatim in Extra so that
// a read-modify-write cycle on the admin side never loses them.
type Settings struct {
	ShowImages         bool
	ShowVideos         bool
	DisplayOrder       Order
	ImageDuration      int // seconds
	ApplyAutoNightMode bool
	BlackScreen        bool
	NightStartHour     int
	NightEndHour       int

	// Extra holds unrecognized top-level keys.
	Extra map[string]json.RawMessage

	// invalid holds recognized keys whose stored value could not be used,
	// so writing the record back does not replace them with defaults.
	invalid map[string]invalidValue
}

type invalidValue struct {
	raw      json.RawMessage
	fallback json.RawMessage
}

// MaxImageDuration caps image_duration, in seconds.
const MaxImageDuration = 24 * 60 * 60

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ShowImages:         true,
		ShowVideos:         true,
		DisplayOrder:       OrderSequential,
		ImageDuration:      3,
		ApplyAutoNightMode: false,
		BlackScreen:        false,
		NightStartHour:     22,
		NightEndHour:       7,
	}
}

// Load reads settings from a JSON file.
//
// A missing or empty file yields defaults and a nil error. A file that
// cannot be read or parsed yields defaults together with the error, so
// the caller can log it and keep going. The returned settings are never nil.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return DefaultSettings(), nil
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), fmt.Errorf("decode config: %w", err)
	}
	return settings, nil
}

// Save writes settings to a JSON file atomically.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return ioutils.WriteFileAtomic(path, append(data, '\n'))
}

// IsRandom reports whether entries should be shuffled.
//
// Any display_order other than "random" means sequential.
func (s *Settings) IsRandom() bool {
	return s.DisplayOrder == OrderRandom
}

// ImageHold returns how long an image stays on screen.
func (s *Settings) ImageHold() time.Duration {
	secs := s.ImageDuration
	if secs <= 0 {
		secs = DefaultSettings().ImageDuration
	}
	secs = min(secs, MaxImageDuration)
	return time.Duration(secs) * time.Second
}

// NightModeActive reports whether the night overlay applies at now.
//
// The window starts at NightStartHour and ends before NightEndHour, and
// may wrap past midnight (22 to 7 covers 22:00-06:59).
func (s *Settings) NightModeActive(now time.Time) bool {
	if !s.ApplyAutoNightMode {
		return false
	}
	start, end := s.NightStartHour, s.NightEndHour
	hour := now.Hour()
	switch {
	case start == end:
		return false
	case start < end:
		return hour >= start && hour < end
	default:
		return hour >= start || hour < end
	}
}

// Merge applies a partial update, as the admin's POST /config does.
//
// Keys in patch replace existing values; everything else is kept.
func (s *Settings) Merge(patch map[string]json.RawMessage) error {
	fields := s.toMap()
	for k, v := range patch {
		fields[k] = v
	}
	merged := DefaultSettings()
	if err := merged.fromMap(fields); err != nil {
		return err
	}
	*s = *merged
	return nil
}

// MarshalJSON writes the recognized options followed by Extra.
func (s *Settings) MarshalJSON() ([]byte, error) {
	fields := s.toMap()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a configuration object.
//
// A recognized key holding a value of the wrong type keeps its current
// value; only a document that is not a JSON object is an error.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("config is not a JSON object")
	}
	return s.fromMap(fields)
}

func (s *Settings) toMap() map[string]json.RawMessage {
	fields := make(map[string]json.RawMessage, len(s.Extra)+8)
	for k, v := range s.Extra {
		fields[k] = v
	}
	put := func(key string, v any) {
		data, _ := json.Marshal(v)
		fields[key] = data
	}
	put(KeyShowImages, s.ShowImages)
	put(KeyShowVideos, s.ShowVideos)
	put(KeyDisplayOrder, string(s.DisplayOrder))
	put(KeyImageDuration, s.ImageDuration)
	put(KeyApplyAutoNightMode, s.ApplyAutoNightMode)
	put(KeyBlackScreen, s.BlackScreen)
	put(KeyNightStartHour, s.NightStartHour)
	put(KeyNightEndHour, s.NightEndHour)

	// An unusable stored value is written back as it was unless the
	// field has been changed since it was read.
	for key, v := range s.invalid {
		if bytes.Equal(fields[key], v.fallback) {
			fields[key] = v.raw
		}
	}
	return fields
}

func (s *Settings) fromMap(fields map[string]json.RawMessage) error {
	extra := make(map[string]json.RawMessage)
	var rejected []string
	for key, raw := range fields {
		ok := true
		switch key {
		case KeyShowImages:
			ok = decodeBool(raw, &s.ShowImages)
		case KeyShowVideos:
			ok = decodeBool(raw, &s.ShowVideos)
		case KeyApplyAutoNightMode:
			ok = decodeBool(raw, &s.ApplyAutoNightMode)
		case KeyBlackScreen:
			ok = decodeBool(raw, &s.BlackScreen)
		case KeyDisplayOrder:
			var order string
			if ok = json.Unmarshal(raw, &order) == nil; ok {
				s.DisplayOrder = Order(order)
			}
		case KeyImageDuration:
			ok = decodeInt(raw, &s.ImageDuration)
		case KeyNightStartHour:
			ok = decodeHour(raw, &s.NightStartHour)
		case KeyNightEndHour:
			ok = decodeHour(raw, &s.NightEndHour)
		default:
			extra[key] = raw
		}
		if !ok {
			rejected = append(rejected, key)
		}
	}
	if len(extra) > 0 {
		s.Extra = extra
	} else {
		s.Extra = nil
	}

	s.invalid = nil
	if len(rejected) > 0 {
		current := s.toMap()
		s.invalid = make(map[string]invalidValue, len(rejected))
		for _, key := range rejected {
			s.invalid[key] = invalidValue{raw: fields[key], fallback: current[key]}
		}
	}
	return nil
}

func decodeBool(raw json.RawMessage, dst *bool) bool {
	var v bool
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	*dst = v
	return true
}

// decodeInt accepts 5, 5.0 and "5". Values outside the int32 range are
// rejected.
func decodeInt(raw json.RawMessage, dst *int) bool {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return false
		}
		*dst = int(f)
		return true
	}
	var str string
	if json.Unmarshal(raw, &str) != nil {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return false
	}
	*dst = n
	return true
}

func decodeHour(raw json.RawMessage, dst *int) bool {
	h := -1
	if !decodeInt(raw, &h) || h < 0 || h > 23 {
		return false
	}
	*dst = h
	return true
}
