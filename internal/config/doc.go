// Package config reads and writes the shared configuration record.
//
// The record is a single JSON object written by the admin server and read
// by the viewer on every playback tick. This package handles:
//   - Default values for every recognized option
//   - Tolerant loading (missing or corrupt files yield defaults)
//   - Preserving unknown keys across a load/save cycle
//   - Atomic saving for the admin side
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// images and videos shown, sequential order, 3 second hold,
//	// auto night mode off, black screen off
//
// # Loading from File
//
//	settings, err := config.Load("/srv/signage/config/config.json")
//	if err != nil {
//	    // settings still holds usable defaults
//	}
//
// For the viewer loop, Store wraps Load and reports errors through a
// callback instead of returning them:
//
//	store := &config.Store{Path: path, OnError: func(err error) { ... }}
//	settings := store.Load()
//
// # Configuration Options
//
//   - show_images, show_videos: kind filters
//   - display_order: "sequential" or "random"
//   - image_duration: seconds each image is held
//   - apply_auto_night_mode, night_start_hour, night_end_hour: dimming window
//   - black_screen: blank the display
package config
