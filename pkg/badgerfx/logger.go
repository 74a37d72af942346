package badgerfx

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// badgerLogger routes badger's printf-style logs into zap. Badger terminates
// most messages with a newline, which is trimmed.
type badgerLogger struct {
	logger *zap.Logger
}

func newLogger(l *zap.Logger) badger.Logger {
	return &badgerLogger{
		logger: l.WithOptions(zap.AddCallerSkip(1)),
	}
}

func (l *badgerLogger) Debugf(format string, a ...any) {
	if !l.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	l.logger.Debug(message(format, a))
}

func (l *badgerLogger) Infof(format string, a ...any) {
	l.logger.Info(message(format, a))
}

func (l *badgerLogger) Warningf(format string, a ...any) {
	l.logger.Warn(message(format, a))
}

func (l *badgerLogger) Errorf(format string, a ...any) {
	l.logger.Error(message(format, a))
}

func message(format string, a []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, a...))
}
