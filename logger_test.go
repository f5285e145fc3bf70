// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pls

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/pls/software"
)

func TestLoggerDefaultSilent(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if Logger().Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

// recordingExecutor notes the logger it was handed.
type recordingExecutor struct {
	*software.Executor
	logger *slog.Logger
}

func (r *recordingExecutor) SetLogger(l *slog.Logger) { r.logger = l }

func TestSetLoggerReachesExecutors(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	exec := &recordingExecutor{Executor: software.New()}
	ctx, err := NewContext(WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	if exec.logger != orig {
		t.Error("NewContext should hand the current logger to the executor")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(l)
	if exec.logger != l {
		t.Error("SetLogger did not reach the executor of an open context")
	}

	ctx.Close()
	SetLogger(orig)
	if exec.logger != l {
		t.Error("SetLogger reached the executor of a closed context")
	}
}

func TestNegotiationIsLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	ctx, err := NewContext(WithCapabilities(Capabilities{Stencil: true, MaxSamples: 4}))
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()
	out := buf.String()
	if !strings.Contains(out, "negotiated interlock mode") || !strings.Contains(out, "mode=msaa") {
		t.Errorf("log output missing negotiation: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("degraded negotiation should warn: %q", out)
	}
}

func TestSetLoggerNil(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(nil)
	if Logger() == nil || Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
