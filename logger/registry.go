package logger

import "sync"

// named holds loggers registered under a component name.
var named sync.Map // map[string]*Logger

// Register overrides the logger returned by Get(name). Tests use it to
// capture a component's output.
func Register(name string, l *Logger) {
	if l == nil {
		named.Delete(name)
		return
	}
	named.Store(name, l)
}

// Get returns the logger registered under name, or the current global
// logger tagged with component=name.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
