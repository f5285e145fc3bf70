// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package logging holds the replaceable slog loggers of the pls packages.
// Every slot starts silent.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nop = slog.New(nopHandler{})

// Nop returns a logger that produces no output.
func Nop() *slog.Logger { return nop }

// Slot is a logger that may be swapped while other goroutines log through
// it. The zero Slot is silent.
type Slot struct {
	p atomic.Pointer[slog.Logger]
}

// Load returns the stored logger.
func (s *Slot) Load() *slog.Logger {
	if l := s.p.Load(); l != nil {
		return l
	}
	return nop
}

// Store replaces the logger. nil restores the silent one.
func (s *Slot) Store(l *slog.Logger) {
	if l == nil {
		l = nop
	}
	s.p.Store(l)
}
