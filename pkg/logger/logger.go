// Package logx configures the process-wide zerolog logger.
package logx

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const production = "production"

// Init sets up the global logger for the given environment: JSON at info
// level in production, human-readable console output at debug level
// otherwise.
func Init(environment string) {
	if environment == production {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}
