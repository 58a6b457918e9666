package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Debug = false

func CheckDebug() bool {
	debug := os.Getenv("MAPLE_DEBUG")
	return debug == "true" || debug == "1"
}

// InitLogging configures the global zerolog logger.
//
// With MAPLE_DEBUG set, everything at debug level goes to <dataDir>/debug.log.
// Otherwise warnings go to stderr, unless quiet is set (the TUI owns the
// terminal), in which case logging is discarded. The returned closer releases
// the log file.
func InitLogging(dataDir string, quiet bool) io.Closer {
	if CheckDebug() {
		Debug = true
		logPath := filepath.Join(dataDir, "debug.log")

		// 0600: the log may contain prompts and file contents
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		} else {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
			log.Logger = zerolog.New(f).With().Timestamp().Caller().Logger()
			log.Debug().Str("path", logPath).Msg("=== Debug logging started ===")
			return f
		}
	}

	if quiet {
		log.Logger = zerolog.Nop()
		return nopCloser{}
	}

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC822})
	return nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
