// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flush

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/resource"
	"github.com/gogpu/pls/internal/ring"
)

// fakeExecutor keeps every descriptor and completes work immediately.
type fakeExecutor struct {
	timeline *ring.ManualTimeline
	backings [ring.KindCount]*ring.HostBacking
	flushes  []*Descriptor
	paths    [][]record.PathRecord
	fail     error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{timeline: ring.NewManualTimeline()}
}

func (f *fakeExecutor) Capabilities() caps.Capabilities { return caps.Full("fake") }
func (f *fakeExecutor) Timeline() ring.Timeline         { return f.timeline }
func (f *fakeExecutor) Destroy()                        {}

func (f *fakeExecutor) NewRingBacking(k ring.Kind, depth int) (ring.Backing, error) {
	f.backings[k] = ring.NewHostBacking(depth)
	return f.backings[k], nil
}

func (f *fakeExecutor) MakeRenderBuffer(resource.BufferKind, resource.BufferFlags, int) (resource.RenderBuffer, error) {
	return nil, errors.New("unsupported")
}

func (f *fakeExecutor) MakeImageTexture(int, int, [][]byte) (resource.Texture, error) {
	return nil, errors.New("unsupported")
}

func (f *fakeExecutor) Execute(_ context.Context, d *Descriptor) error {
	if f.fail != nil {
		return f.fail
	}
	f.flushes = append(f.flushes, d)
	recs := ring.View[record.PathRecord](f.backings[ring.Paths].Slot(d.Slots[ring.Paths]))
	f.paths = append(f.paths, append([]record.PathRecord(nil), recs[:d.Stats.Written.Paths]...))
	f.timeline.Signal(d.Serial)
	return nil
}

func newScheduler(t *testing.T, mode caps.InterlockMode, capacity draw.Counters) (*Scheduler, *fakeExecutor) {
	t.Helper()
	exec := newFakeExecutor()
	s, err := caps.Negotiate(exec.Capabilities(), &mode)
	if err != nil {
		t.Fatal(err)
	}
	sched, err := NewScheduler(exec, s, Config{Capacity: capacity})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := sched.BeginFrame(Frame{Width: 256, Height: 256}); err != nil {
		t.Fatal(err)
	}
	return sched, exec
}

func rectPath(x, y, w, h float64) *geom.Path {
	var p geom.Path
	p.MoveTo(geom.Pt(x, y))
	p.LineTo(geom.Pt(x+w, y))
	p.LineTo(geom.Pt(x+w, y+h))
	p.LineTo(geom.Pt(x, y+h))
	p.Close()
	return &p
}

func polygon(n int, cx, cy, r float64) *geom.Path {
	var p geom.Path
	p.MoveTo(geom.Pt(cx+r, cy))
	for i := 1; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		p.LineTo(geom.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a)))
	}
	p.LineTo(geom.Pt(cx+r, cy))
	p.Close()
	return &p
}

func pathDraw(t *testing.T, s *Scheduler, p *geom.Path, rule draw.FillRule) *draw.Draw {
	t.Helper()
	d, ok := draw.NewPath(draw.PathParams{
		Common: draw.Common{
			Transform: geom.Identity(),
			Strategy:  s.Strategy(),
			Viewport:  geom.Viewport(256, 256),
		},
		Path:      p,
		Paint:     draw.Paint{Kind: draw.PaintSolid, Color: [4]float32{0, 0, 1, 1}, FillRule: rule},
		Threshold: 1000,
	})
	if !ok {
		t.Fatal("draw culled")
	}
	return d
}

func push(t *testing.T, s *Scheduler, d *draw.Draw) {
	t.Helper()
	if err := s.Push(context.Background(), d); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
}

func end(t *testing.T, s *Scheduler) {
	t.Helper()
	if err := s.EndFrame(context.Background()); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

// phases flattens the batches of a descriptor.
func phases(d *Descriptor) []Element {
	var out []Element
	for _, c := range d.Commands {
		if c.Kind == CmdBatch {
			out = append(out, c.Elements...)
		}
	}
	return out
}

func TestPrepassesRunFrontToBackBeforeSubpasses(t *testing.T) {
	s, exec := newScheduler(t, caps.Atomics, draw.Counters{})
	b := pathDraw(t, s, rectPath(10, 10, 100, 100), draw.NonZero)
	a := pathDraw(t, s, rectPath(50, 50, 100, 100), draw.NonZero)
	push(t, s, b)
	push(t, s, a)
	end(t, s)

	if len(exec.flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(exec.flushes))
	}
	got := phases(exec.flushes[0])
	want := []struct {
		draw *draw.Draw
		pass Pass
	}{
		{a, Prepass}, {b, Prepass}, {b, Subpass}, {a, Subpass},
	}
	if len(got) != len(want) {
		t.Fatalf("phases = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Draw != w.draw || got[i].Pass != w.pass {
			t.Errorf("phase %d = draw %d pass %d, want draw %v pass %d", i, got[i].DrawIndex, got[i].Pass, w.draw, w.pass)
		}
	}

	cmds := exec.flushes[0].Commands
	if cmds[0].Kind != CmdAtomicInitialize || cmds[len(cmds)-1].Kind != CmdAtomicResolve {
		t.Errorf("atomics flush must open with initialize and close with resolve, got %s ... %s",
			cmds[0].Kind, cmds[len(cmds)-1].Kind)
	}
	if exec.flushes[0].Stats.Prepasses != 2 || exec.flushes[0].Stats.Subpasses != 2 {
		t.Errorf("Stats = %+v, want 2 prepasses and 2 subpasses", exec.flushes[0].Stats)
	}
}

func TestPrepassPrecedesEarlierDrawWithoutOne(t *testing.T) {
	s, exec := newScheduler(t, caps.Atomics, draw.Counters{})
	tex, err := resource.NewHostTexture(2, 2, [][]byte{make([]byte, 16)})
	if err != nil {
		t.Fatal(err)
	}
	b, ok := draw.NewImageRect(draw.ImageParams{
		Common: draw.Common{
			Transform: geom.Translate(10, 10).Mul(geom.Scale(50, 50)),
			Strategy:  s.Strategy(),
			Viewport:  geom.Viewport(256, 256),
		},
		Texture: tex,
		Opacity: 1,
	})
	if !ok {
		t.Fatal("image culled")
	}
	if b.Prepasses() != 0 {
		t.Fatalf("image rect has %d prepasses, want 0", b.Prepasses())
	}
	a := pathDraw(t, s, rectPath(50, 50, 100, 100), draw.NonZero)
	push(t, s, b)
	push(t, s, a)
	end(t, s)

	got := phases(exec.flushes[0])
	find := func(d *draw.Draw, pass Pass) int {
		for i, e := range got {
			if e.Draw == d && e.Pass == pass {
				return i
			}
		}
		t.Fatalf("no pass %d for draw", pass)
		return -1
	}
	aPre, bSub, aSub := find(a, Prepass), find(b, Subpass), find(a, Subpass)
	if aPre > bSub {
		t.Errorf("prepass of the later path at %d runs after the image subpass at %d", aPre, bSub)
	}
	if bSub > aSub {
		t.Errorf("image subpass at %d runs after the path subpass at %d", bSub, aSub)
	}
}

func TestRasterOrderingKeepsSubmissionOrder(t *testing.T) {
	s, exec := newScheduler(t, caps.RasterOrdering, draw.Counters{})
	var ds []*draw.Draw
	for i := 0; i < 4; i++ {
		d := pathDraw(t, s, rectPath(float64(i*10), 0, 100, 100), draw.NonZero)
		ds = append(ds, d)
		push(t, s, d)
	}
	end(t, s)

	got := phases(exec.flushes[0])
	for i, e := range got {
		if e.Draw != ds[i] {
			t.Errorf("phase %d is draw %d, want %d", i, e.DrawIndex, i)
		}
	}
	if st := exec.flushes[0].Stats; st.Batches != 1 || st.Barriers != 0 {
		t.Errorf("Stats = %+v, want one batch and no barriers", st)
	}
}

func TestNonOverlappingDrawsShareAGroup(t *testing.T) {
	s, exec := newScheduler(t, caps.MSAA, draw.Counters{})
	push(t, s, pathDraw(t, s, rectPath(0, 0, 20, 20), draw.NonZero))
	push(t, s, pathDraw(t, s, rectPath(100, 100, 20, 20), draw.NonZero))
	end(t, s)
	for _, e := range phases(exec.flushes[0]) {
		if e.Group != e.Phase {
			t.Errorf("draw %d phase %d in group %d, want %d", e.DrawIndex, e.Phase, e.Group, e.Phase)
		}
	}
}

func TestMSAAStencilThenCover(t *testing.T) {
	s, exec := newScheduler(t, caps.MSAA, draw.Counters{})
	d := pathDraw(t, s, rectPath(10, 10, 50, 50), draw.EvenOdd)
	push(t, s, d)
	end(t, s)

	got := phases(exec.flushes[0])
	if len(got) != 2 || got[0].Phase != 0 || got[1].Phase != 1 {
		t.Fatalf("phases = %+v, want stencil then cover", got)
	}
	if got[1].Group != got[0].Group+1 {
		t.Errorf("cover group = %d, want %d", got[1].Group, got[0].Group+1)
	}
	if exec.flushes[0].Stats.Barriers != 1 {
		t.Errorf("Barriers = %d, want 1", exec.flushes[0].Stats.Barriers)
	}
}

func TestLoadStoreFraming(t *testing.T) {
	s, exec := newScheduler(t, caps.LoadStore, draw.Counters{})
	push(t, s, pathDraw(t, s, rectPath(10, 10, 50, 50), draw.NonZero))
	push(t, s, pathDraw(t, s, rectPath(20, 20, 50, 50), draw.NonZero))
	end(t, s)

	var kinds []CommandKind
	for _, c := range exec.flushes[0].Commands {
		kinds = append(kinds, c.Kind)
	}
	want := []CommandKind{CmdLoadColor, CmdBatch, CmdStoreColor, CmdBarrier, CmdLoadColor, CmdBatch, CmdStoreColor}
	if len(kinds) != len(want) {
		t.Fatalf("commands = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("command %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	capacity := draw.Counters{Draws: 8, Paths: 8, Contours: 8, TessVertices: 64, TriangleVertices: 64, GradientSpans: 8, CoverageSamples: 1 << 20}
	s, exec := newScheduler(t, caps.RasterOrdering, capacity)
	for i := 0; i < 20; i++ {
		push(t, s, pathDraw(t, s, rectPath(float64(i), float64(i), 30, 30), draw.NonZero))
	}
	end(t, s)

	if len(exec.flushes) < 3 {
		t.Fatalf("flushes = %d, want at least 3", len(exec.flushes))
	}
	total := 0
	for i, d := range exec.flushes {
		if !d.Stats.Written.Fits(d.Stats.Capacity) {
			t.Errorf("flush %d wrote %v over capacity %v", i, d.Stats.Written, d.Stats.Capacity)
		}
		if d.Stats.Written.Paths != len(exec.paths[i]) {
			t.Errorf("flush %d: %d path records, want %d", i, len(exec.paths[i]), d.Stats.Written.Paths)
		}
		want := LoadPreserve
		if i == 0 {
			want = LoadClear
		}
		if d.LoadAction != want {
			t.Errorf("flush %d LoadAction = %s, want %s", i, d.LoadAction, want)
		}
		total += d.Stats.Draws
	}
	if total != 20 {
		t.Errorf("executed %d draws, want 20", total)
	}
}

func TestOversizedDrawGrowsRings(t *testing.T) {
	capacity := draw.Counters{Draws: 8, Paths: 8, Contours: 8, TessVertices: 16, TriangleVertices: 16, GradientSpans: 8, CoverageSamples: 1 << 20}
	s, exec := newScheduler(t, caps.RasterOrdering, capacity)
	d := pathDraw(t, s, polygon(40, 128, 128, 60), draw.NonZero)
	push(t, s, d)
	end(t, s)

	got := s.Capacity().TessVertices
	if got < d.Counters().TessVertices || got&(got-1) != 0 {
		t.Errorf("TessVertices capacity = %d, want a power of two >= %d", got, d.Counters().TessVertices)
	}
	if len(exec.flushes) != 1 {
		t.Errorf("flushes = %d, want 1", len(exec.flushes))
	}
}

func TestWrittenCountsMatchDraws(t *testing.T) {
	s, exec := newScheduler(t, caps.RasterOrdering, draw.Counters{})
	var sum draw.Counters
	want := []draw.Type{draw.TypeMidpointFanPatches, draw.TypeMidpointFanPatches, draw.TypeInteriorTriangulation}
	for i, n := range []int{10, 80, 5000} {
		d := pathDraw(t, s, polygon(n, 128, 128, 100), draw.NonZero)
		if d.Type() != want[i] {
			t.Errorf("%d segments: Type() = %s, want %s", n, d.Type(), want[i])
		}
		sum = sum.Add(d.Counters())
		push(t, s, d)
	}
	end(t, s)

	var written draw.Counters
	for _, f := range exec.flushes {
		written = written.Add(f.Stats.Written)
	}
	if written != sum {
		t.Errorf("written %v, want per-draw sum %v", written, sum)
	}
}

func TestSlotReuseWaitsForCompletion(t *testing.T) {
	exec := newFakeExecutor()
	strategy, _ := caps.Negotiate(exec.Capabilities(), nil)
	s, err := NewScheduler(exec, strategy, Config{Depth: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.BeginFrame(Frame{Width: 64, Height: 64}); err != nil {
			t.Fatal(err)
		}
		end(t, s)
	}
	slots := []int{exec.flushes[0].Slots[ring.Paths], exec.flushes[1].Slots[ring.Paths]}
	if slots[0] == slots[1] {
		t.Errorf("consecutive flushes used slot %d twice", slots[0])
	}
}

func TestExecutorFailurePoisons(t *testing.T) {
	s, exec := newScheduler(t, caps.RasterOrdering, draw.Counters{})
	exec.fail = errors.New("device lost")
	push(t, s, pathDraw(t, s, rectPath(0, 0, 10, 10), draw.NonZero))
	if err := s.EndFrame(context.Background()); !errors.Is(err, ErrUnusable) {
		t.Fatalf("EndFrame() error = %v, want ErrUnusable", err)
	}
	if err := s.BeginFrame(Frame{Width: 1, Height: 1}); !errors.Is(err, ErrUnusable) {
		t.Errorf("BeginFrame() error = %v, want ErrUnusable", err)
	}
}

func TestFrameMisuse(t *testing.T) {
	s, _ := newScheduler(t, caps.RasterOrdering, draw.Counters{})
	if err := s.BeginFrame(Frame{}); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("nested BeginFrame() error = %v, want ErrFrameInProgress", err)
	}
	end(t, s)
	if err := s.EndFrame(context.Background()); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame() outside a frame error = %v, want ErrNoFrame", err)
	}
}

func TestIntersectionBoard(t *testing.T) {
	b := NewIntersectionBoard(1000, 1000)
	r := func(l, t, rr, bb int32) geom.IAABB { return geom.IAABB{L: l, T: t, R: rr, B: bb} }
	if g := b.Add(r(0, 0, 300, 300), 2); g != 0 {
		t.Errorf("first group = %d, want 0", g)
	}
	if g := b.Add(r(600, 600, 700, 700), 1); g != 0 {
		t.Errorf("disjoint group = %d, want 0", g)
	}
	// Overlaps the first rect, which reserved groups 0 and 1.
	if g := b.Add(r(290, 290, 650, 650), 1); g != 2 {
		t.Errorf("overlapping group = %d, want 2", g)
	}
}
