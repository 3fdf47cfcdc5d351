package client

// Logger receives non-fatal diagnostics from a Client, such as formats
// that could not be resolved. Implementations must be safe for
// concurrent use.
type Logger interface {
	Warnf(format string, args ...any)
}

// LoggerFunc adapts a printf-style function into a Logger.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Warnf(format string, args ...any) { f(format, args...) }

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}
