package core

// Logger is any service that can log messages and report them to an
// external error tracker. Implementations may inspect args for context
// objects (eg. the acting user).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
