package resolve

import "go.uber.org/zap"

// Logger encapsulates a Logger and module which it belongs to.
// Use this through SetLogger() of a resolver.
type Logger struct {
	*zap.SugaredLogger
	module string
}

// NewLogger returns a Logger for module writing to l.
func NewLogger(l *zap.SugaredLogger, module string) *Logger {
	return &Logger{SugaredLogger: l, module: module}
}

// nopLogger is the default logger: it discards everything.
func nopLogger() *Logger {
	return NewLogger(zap.NewNop().Sugar(), "resolve")
}

type LogSetter interface {
	SetLogger(*Logger)
}

// Module returns (stylised) module name.
func (l *Logger) Module() string {
	return "[" + l.module + "]"
}
