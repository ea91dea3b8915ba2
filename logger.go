package qbt

// Logger receives diagnostic output from the client. Implementations can
// bridge to any logging framework.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// NoopLogger discards all log output. It is the default.
type NoopLogger struct{}

func (NoopLogger) Debugf(format string, args ...any) {}
func (NoopLogger) Warnf(format string, args ...any)  {}
