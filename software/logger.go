// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"log/slog"

	"github.com/gogpu/pls/internal/logging"
)

var logger logging.Slot

func slogger() *slog.Logger { return logger.Load() }

// SetLogger sets the logger used by the executor. The logger is shared by
// every software executor.
func (e *Executor) SetLogger(l *slog.Logger) { logger.Store(l) }
