package logger

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Client is the logging facade the rest of the service depends on.
type Client interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}
