package player

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// LogEvents returns an event handler that writes to logger. Verbose
// events are logged at debug level.
func LogEvents(logger *slog.Logger) func(Event) {
	return func(e Event) {
		level := slog.LevelInfo
		switch e.Level {
		case LevelVerbose:
			level = slog.LevelDebug
		case LevelWarning:
			level = slog.LevelWarn
		case LevelError:
			level = slog.LevelError
		}

		attrs := []any{"state", e.State.String()}
		if e.Path != "" {
			attrs = append(attrs,
				"item", filepath.Base(e.Path),
				"position", fmt.Sprintf("%d/%d", e.Index+1, e.Total))
		}
		logger.Log(context.Background(), level, e.Message, attrs...)
	}
}
