// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"log/slog"
	"sync"

	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/logging"
)

var logger logging.Slot

// loggerSetter is implemented by executors that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// liveExecutors are the executors of open contexts, so SetLogger reaches
// them after creation.
var (
	liveMu        sync.Mutex
	liveExecutors = map[loggerSetter]int{}
)

// SetLogger configures the logger for pls, its scheduler and the executors
// of every open Context. By default pls produces no log output.
//
// Pass nil to restore the silent default.
//
// Log levels used by pls:
//   - [slog.LevelDebug]: flush statistics, ring growth, pipeline creation
//   - [slog.LevelInfo]: negotiated interlock mode, executor selected
//   - [slog.LevelWarn]: degraded capabilities, resource release errors
//   - [slog.LevelError]: fatal GPU object creation
//
// Example:
//
//	pls.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	l = logger.Load()
	flush.SetLogger(l)

	liveMu.Lock()
	defer liveMu.Unlock()
	for ls := range liveExecutors {
		ls.SetLogger(l)
	}
}

// Logger returns the current logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Load()
}

// track registers exec for logger propagation and hands it the current
// logger. The returned func unregisters it.
func track(exec flush.Executor) func() {
	ls, ok := exec.(loggerSetter)
	if !ok {
		return func() {}
	}
	ls.SetLogger(Logger())
	liveMu.Lock()
	liveExecutors[ls]++
	liveMu.Unlock()
	return func() {
		liveMu.Lock()
		defer liveMu.Unlock()
		if liveExecutors[ls]--; liveExecutors[ls] <= 0 {
			delete(liveExecutors, ls)
		}
	}
}
