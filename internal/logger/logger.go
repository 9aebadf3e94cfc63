// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// For "production", it uses a JSON encoder. For "test" it discards everything.
// All other environments get a human-readable console encoder.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			// Fallback to nop logger if initialization fails.
			base = zap.NewNop()
		}

		Set(base.Sugar())
	})
}

// Set replaces the global logger. Tests use it to install observers.
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = l
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = sugar
		mu.RUnlock()
	}
	return l
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
