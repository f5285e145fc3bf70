// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import (
	"log/slog"

	"github.com/gogpu/pls/internal/logging"
)

var logger logging.Slot

func slogger() *slog.Logger { return logger.Load() }

// SetLogger replaces the scheduler logger. pls.SetLogger calls it.
func SetLogger(l *slog.Logger) { logger.Store(l) }
