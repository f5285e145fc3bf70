// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/pls/internal/logging"
)

var logger logging.Slot

func slogger() *slog.Logger { return logger.Load() }

// SetLogger sets the logger used by the executor. The logger is shared by
// every GPU executor, since pipelines and rings log from package helpers.
func (e *Executor) SetLogger(l *slog.Logger) { logger.Store(l) }
