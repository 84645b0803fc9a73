package log

import (
	"context"

	"github.com/telarpress/contact-relay/clientip"
	"go.uber.org/zap"
)

type clientIPLogger struct {
	sugar *zap.SugaredLogger
}

// ClientIPLogger adapts a zap logger to the resolver's Logger interface.
// Attribute pairs are passed through as zap key/value fields.
func ClientIPLogger(logger *zap.Logger) clientip.Logger {
	return &clientIPLogger{sugar: logger.Named("clientip").Sugar()}
}

func (l *clientIPLogger) WarnContext(_ context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}
