// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
	"github.com/gogpu/pls/internal/tess"
)

const size = 64

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	e, err := New(device, queue)
	if err != nil {
		cleanup()
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		e.Destroy()
		cleanup()
	})
	return e
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestCapabilitiesNegotiateMSAA(t *testing.T) {
	e := newTestExecutor(t)
	c := e.Capabilities()
	if c.Backend != "wgpu" || c.MaxSamples != sampleCount || !c.Stencil {
		t.Errorf("Capabilities() = %+v", c)
	}
	s, err := caps.Negotiate(c, nil)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if s.Mode != caps.MSAA {
		t.Errorf("negotiated %s, want msaa", s.Mode)
	}
}

func TestShaderCompiles(t *testing.T) {
	err := validateShader()
	if err == nil {
		return
	}
	if nagaGap(err) {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
	t.Fatalf("pls shader does not compile: %v", err)
}

func TestRingBacking(t *testing.T) {
	e := newTestExecutor(t)
	b, err := e.NewRingBacking(ring.Paths, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Resize(256); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	defer b.Destroy()

	slot := b.Map(1)
	if len(slot) != 256 {
		t.Fatalf("Map(1) has %d bytes, want 256", len(slot))
	}
	slot[0] = 7
	if err := b.Commit(1, nil); err != nil {
		t.Errorf("Commit() error = %v", err)
	}
	shadow := make([]byte, 256)
	shadow[0] = 9
	if err := b.Commit(0, shadow); err != nil {
		t.Errorf("Commit(shadow) error = %v", err)
	}
	if got := b.Map(0)[0]; got != 9 {
		t.Errorf("shadow not copied: got %d", got)
	}
	if got := e.backings[ring.Paths].binding(1).Size; got != 256 {
		t.Errorf("binding size = %d, want 256", got)
	}
}

func TestTimeline(t *testing.T) {
	e := newTestExecutor(t)
	if got := e.Timeline().Completed(); got != 0 {
		t.Errorf("Completed() = %d before any submit", got)
	}
	if err := e.Timeline().Wait(context.Background(), 3); err == nil {
		t.Error("Wait() for an unsubmitted serial should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Timeline().Wait(ctx, 0); err != nil {
		t.Errorf("Wait(0) error = %v, want nil", err)
	}
}

func checker(t *testing.T, e *Executor) resource.Texture {
	t.Helper()
	pix := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	tex, err := e.MakeImageTexture(2, 2, [][]byte{pix, {64, 64, 64, 255}})
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func TestMakeImageTexture(t *testing.T) {
	e := newTestExecutor(t)
	tex := checker(t, e)
	if tex.MipLevels() != 2 || tex.Width() != 2 {
		t.Errorf("texture = %dx%d with %d levels", tex.Width(), tex.Height(), tex.MipLevels())
	}
	if e.texture(tex.ID()) == nil {
		t.Error("texture not registered")
	}
	if _, err := e.MakeImageTexture(2, 2, [][]byte{make([]byte, 3)}); !errors.Is(err, resource.ErrInvalidTexture) {
		t.Errorf("short level error = %v, want ErrInvalidTexture", err)
	}
}

func TestPackTexels(t *testing.T) {
	levels := [][]byte{make([]byte, 4*4*4), make([]byte, 2*2*4), {1, 2, 3, 4}}
	out := packTexels(4, 4, levels)
	words := ring.View[uint32](out)
	if words[0] != 3 {
		t.Fatalf("level count = %d, want 3", words[0])
	}
	wantHeader := []uint32{3, 10, 4, 4, 26, 2, 2, 30, 1, 1}
	for i, w := range wantHeader {
		if words[i] != w {
			t.Errorf("header[%d] = %d, want %d", i, words[i], w)
		}
	}
	if last := words[30]; last != 0x04030201 {
		t.Errorf("last texel = %#x, want 0x04030201", last)
	}
}

func TestStoreBGRA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src := make([]byte, 256)
	copy(src, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	storeBGRA(img, src, 256, 2, 1)
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Fatalf("Pix = %v, want %v", img.Pix[:8], want)
		}
	}
}

func rect(x, y, w, h float64) *geom.Path {
	var p geom.Path
	p.MoveTo(geom.Pt(x, y))
	p.LineTo(geom.Pt(x+w, y))
	p.LineTo(geom.Pt(x+w, y+h))
	p.LineTo(geom.Pt(x, y+h))
	p.Close()
	return &p
}

func star(cx, cy, r float64) *geom.Path {
	var p geom.Path
	for i := range 5 {
		a := -math.Pi/2 + float64(i)*4*math.Pi/5
		pt := geom.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	p.Close()
	return &p
}

func common(s caps.Strategy) draw.Common {
	return draw.Common{Transform: geom.Identity(), Strategy: s, Viewport: geom.Viewport(size, size)}
}

func solid(r, g, b, a float32) draw.Paint {
	return draw.Paint{Kind: draw.PaintSolid, Color: [4]float32{r, g, b, a}}
}

func mustPath(t *testing.T, p draw.PathParams) *draw.Draw {
	t.Helper()
	d, ok := draw.NewPath(p)
	if !ok {
		t.Fatal("path culled")
	}
	return d
}

// scene draws a convex fill, an even-odd star, a clockwise fill, a stroke,
// a clip with a clipped draw and an image.
func scene(t *testing.T, e *Executor, s caps.Strategy) []*draw.Draw {
	var ds []*draw.Draw
	add := func(p draw.PathParams) { ds = append(ds, mustPath(t, p)) }

	add(draw.PathParams{Common: common(s), Path: rect(4, 4, 30, 20), Paint: solid(1, 0, 0, 0.6)})
	evenOdd := solid(0, 0.5, 1, 0.8)
	evenOdd.FillRule = draw.EvenOdd
	add(draw.PathParams{Common: common(s), Path: star(32, 32, 24), Paint: evenOdd})
	clockwise := solid(0, 1, 0, 0.5)
	clockwise.FillRule = draw.Clockwise
	add(draw.PathParams{Common: common(s), Path: star(40, 20, 12), Paint: clockwise})

	stroke := solid(0, 0, 0, 1)
	stroke.Stroke = &tess.StrokeStyle{Radius: 2, Join: tess.JoinRound, Cap: tess.CapRound}
	open := geom.Path{}
	open.MoveTo(geom.Pt(4, 60))
	open.QuadTo(geom.Pt(30, 30), geom.Pt(60, 60))
	add(draw.PathParams{Common: common(s), Path: &open, Paint: stroke})

	add(draw.PathParams{Common: common(s), Path: star(32, 32, 20), Paint: solid(0, 0, 0, 1), ClipUpdateID: 1})
	clipped := common(s)
	clipped.ClipID = 1
	clipped.Blend = draw.BlendScreen
	add(draw.PathParams{Common: clipped, Path: rect(0, 0, size, size), Paint: solid(1, 0.8, 0.2, 1)})

	c := common(s)
	c.Transform = geom.Translate(40, 40).Mul(geom.Scale(8, 8))
	img, ok := draw.NewImageRect(draw.ImageParams{Common: c, Texture: checker(t, e), Opacity: 1})
	if !ok {
		t.Fatal("image culled")
	}
	return append(ds, img)
}

func renderScene(t *testing.T, e *Executor, target any, capacity draw.Counters) {
	t.Helper()
	strategy, err := caps.Negotiate(e.Capabilities(), nil)
	if err != nil {
		t.Fatal(err)
	}
	sched, err := flush.NewScheduler(e, strategy, flush.Config{Capacity: capacity})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer sched.Destroy()

	frame := flush.Frame{Width: size, Height: size, Target: target, ClearColor: [4]float32{1, 1, 1, 1}}
	if err := sched.BeginFrame(frame); err != nil {
		t.Fatal(err)
	}
	for _, d := range scene(t, e, strategy) {
		if err := sched.Push(context.Background(), d); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
	}
	if err := sched.EndFrame(context.Background()); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

func TestExecuteReadback(t *testing.T) {
	e := newTestExecutor(t)
	renderScene(t, e, image.NewRGBA(image.Rect(0, 0, size, size)), draw.Counters{})

	if e.targets.width != size || e.targets.resolve.tex == nil {
		t.Errorf("attachments not created for readback: %+v", e.targets)
	}
	if stats := e.PipelineStats(); stats.Len == 0 {
		t.Error("no pipelines created")
	}
	if got := e.Timeline().Completed(); got == 0 {
		t.Error("timeline did not advance")
	}
}

func TestExecuteSplitFlushesReusePipelines(t *testing.T) {
	e := newTestExecutor(t)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	renderScene(t, e, img, draw.Counters{})
	first := e.PipelineStats()

	// One draw per flush forces every draw into its own flush.
	renderScene(t, e, img, draw.Counters{Draws: 1})
	second := e.PipelineStats()
	if second.Len != first.Len {
		t.Errorf("pipelines = %d after split frame, want %d", second.Len, first.Len)
	}
	if second.Hits <= first.Hits {
		t.Errorf("no cache hits on the second frame: %+v", second)
	}
}

func TestExecuteSurfaceTarget(t *testing.T) {
	e := newTestExecutor(t)
	surface, err := newAttachment(e.device, "test_surface", size, size, 1, colorFormat, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		t.Fatal(err)
	}
	defer surface.destroy(e.device)

	renderScene(t, e, SurfaceTarget{View: surface.view}, draw.Counters{})
	if e.targets.resolve.tex != nil {
		t.Error("surface targets should not allocate a resolve texture")
	}
	if len(e.retired) == 0 && e.Timeline().Completed() == 0 {
		t.Error("surface flush neither retired nor completed")
	}
}

func TestExecuteErrors(t *testing.T) {
	e := newTestExecutor(t)
	msaa := caps.Strategy{Mode: caps.MSAA}
	tests := []struct {
		name string
		d    flush.Descriptor
		want error
	}{
		{"atomics", flush.Descriptor{Strategy: caps.Strategy{Mode: caps.Atomics}}, ErrUnsupportedMode},
		{"no target", flush.Descriptor{Strategy: msaa, Frame: flush.Frame{Width: 4, Height: 4}}, ErrInvalidTarget},
		{"small image", flush.Descriptor{Strategy: msaa, Frame: flush.Frame{Width: 4, Height: 4,
			Target: image.NewRGBA(image.Rect(0, 0, 2, 2))}}, ErrInvalidTarget},
		{"nil view", flush.Descriptor{Strategy: msaa, Frame: flush.Frame{Width: 4, Height: 4,
			Target: SurfaceTarget{}}}, ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.Execute(context.Background(), &tt.d); !errors.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExecuteCanceled(t *testing.T) {
	e := newTestExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Execute(ctx, &flush.Descriptor{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
