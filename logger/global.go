package logger

var global = New("sweep")

// Configure configures the logger used by components that were not given one.
func Configure(c Config) {
	global.Configure(c)
}

// Sub returns a child of the global logger with a new namespace.
func Sub(ns string, args ...interface{}) *Logger {
	return global.Sub(ns, args...)
}
