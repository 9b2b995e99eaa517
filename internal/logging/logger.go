package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/aicookbook/common"
	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	SetLevel(level common.LogLevel)
}

type defaultLogger struct {
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewDefaultLogger returns a human-readable logger on stderr with logging disabled.
func NewDefaultLogger() Logger {
	return NewLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp})
}

// NewLogger returns a logger writing to w with logging disabled.
func NewLogger(w io.Writer) Logger {
	l := &defaultLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
	l.SetLevel(common.DisabledLevel)
	return l
}

func zerologLevel(level common.LogLevel) zerolog.Level {
	switch level {
	case common.DebugLevel:
		return zerolog.DebugLevel
	case common.InfoLevel:
		return zerolog.InfoLevel
	case common.WarnLevel:
		return zerolog.WarnLevel
	case common.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// current returns a copy of the logger taken under the lock, so SetLevel
// can run concurrently with logging.
func (l *defaultLogger) current() *zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	lg := l.logger
	return &lg
}

func (l *defaultLogger) Debug(args ...interface{}) { l.current().Debug().Msg(fmt.Sprint(args...)) }
func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	l.current().Debug().Msgf(format, args...)
}
func (l *defaultLogger) Info(args ...interface{}) { l.current().Info().Msg(fmt.Sprint(args...)) }
func (l *defaultLogger) Infof(format string, args ...interface{}) {
	l.current().Info().Msgf(format, args...)
}
func (l *defaultLogger) Warn(args ...interface{}) { l.current().Warn().Msg(fmt.Sprint(args...)) }
func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	l.current().Warn().Msgf(format, args...)
}
func (l *defaultLogger) Error(args ...interface{}) { l.current().Error().Msg(fmt.Sprint(args...)) }
func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.current().Error().Msgf(format, args...)
}

func (l *defaultLogger) SetLevel(level common.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = l.logger.Level(zerologLevel(level))
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &defaultLogger{logger: zerolog.Nop()}
}
