// Package logging builds the zerolog loggers shared by both binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"smart-tasks/internal/config"
)

// Default returns the logger used before configuration is read.
func Default() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// ForEnv adjusts the global level and output of base for the given env.
// Local runs get a human readable console writer.
func ForEnv(base zerolog.Logger, env string, out io.Writer) (zerolog.Logger, error) {
	w := out
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	default:
		return base, fmt.Errorf("unknown env: %s", env)
	}

	return base.Output(w), nil
}
