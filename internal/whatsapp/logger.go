package whatsapp

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zeroLogger routes whatsmeow's printf-style logging into zerolog.
type zeroLogger struct {
	base   zerolog.Logger
	module string
	logger zerolog.Logger
}

// NewLogger returns a whatsmeow logger tagged with module.
func NewLogger(module string) waLog.Logger {
	return newZeroLogger(log.Logger, module)
}

func newZeroLogger(base zerolog.Logger, module string) zeroLogger {
	return zeroLogger{
		base:   base,
		module: module,
		logger: base.With().Str("module", module).Logger(),
	}
}

func (z zeroLogger) Errorf(msg string, args ...interface{}) { z.logger.Error().Msgf(msg, args...) }
func (z zeroLogger) Warnf(msg string, args ...interface{})  { z.logger.Warn().Msgf(msg, args...) }
func (z zeroLogger) Infof(msg string, args ...interface{})  { z.logger.Info().Msgf(msg, args...) }
func (z zeroLogger) Debugf(msg string, args ...interface{}) { z.logger.Debug().Msgf(msg, args...) }

func (z zeroLogger) Sub(module string) waLog.Logger {
	return newZeroLogger(z.base, z.module+"/"+module)
}
