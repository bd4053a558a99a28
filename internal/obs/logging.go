// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the client and the
// simulator.
//
// Logger is exported to allow other packages to use it for logging.
var Logger *slog.Logger

// InitLogger initializes the global Logger with a JSON handler. The level
// comes from LOG_LEVEL (debug, info, warn, error), defaulting to info.
func InitLogger() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	Logger = slog.New(h)
}
