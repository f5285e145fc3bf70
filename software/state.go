// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"

	"github.com/gogpu/pls/internal/caps"
	"github.com/gogpu/pls/internal/draw"
	"github.com/gogpu/pls/internal/flush"
	"github.com/gogpu/pls/internal/geom"
	"github.com/gogpu/pls/internal/record"
	"github.com/gogpu/pls/internal/ring"
)

// planes is the per-target storage that outlives a single flush. Sample
// planes hold draw.CoverageSamplesPerPixel entries per pixel.
type planes struct {
	width, height int
	// clip holds the clip id each sample belongs to.
	clip []uint16
	// stencil holds MSAA winding, wrapped to 8 bits.
	stencil []uint8
	// color is pixel-local storage for the load/store and atomics flows.
	color []byte
	// coverage is the atomics coverage buffer of the current flush.
	coverage []int32

	winding []int32
	mask    []uint8
	blur    []uint8
}

// reset clears the planes for a new frame.
func (p *planes) reset(w, h int) {
	n := w * h * draw.CoverageSamplesPerPixel
	if p.width != w || p.height != h || len(p.clip) != n {
		p.width, p.height = w, h
		p.clip = make([]uint16, n)
		p.stencil = make([]uint8, n)
		p.color = make([]byte, w*h*4)
		return
	}
	clear(p.clip)
	clear(p.stencil)
}

// scratch returns a zeroed winding buffer of n samples.
func (p *planes) scratch(n int) []int32 {
	if cap(p.winding) < n {
		p.winding = make([]int32, n)
	}
	w := p.winding[:n]
	clear(w)
	return w
}

// masks returns a zeroed per-pixel coverage buffer of n pixels.
func (p *planes) masks(n int) []uint8 {
	if cap(p.mask) < n {
		p.mask = make([]uint8, n)
	}
	m := p.mask[:n]
	clear(m)
	return m
}

// surface addresses premultiplied RGBA8 pixels.
type surface struct {
	pix    []byte
	stride int
	base   int
}

func (s surface) at(x, y int) int { return s.base + y*s.stride + x*4 }

// flushState is everything one Execute call reads.
type flushState struct {
	exec   *Executor
	desc   *flush.Descriptor
	mode   caps.InterlockMode
	planes *planes
	frame  geom.IAABB

	target surface
	// dst is where color is written: the target, or the color plane
	// between a load and a store.
	dst surface

	paths    []record.PathRecord
	paints   []record.PaintRecord
	contours []record.ContourRecord
	tess     []record.TessVertex
	tris     []record.TriangleVertex
	spans    []record.GradientSpan

	wireframe bool
}

func (e *Executor) begin(d *flush.Descriptor, target *image.RGBA) *flushState {
	w, h := d.Frame.Width, d.Frame.Height
	if d.Index == 0 || e.planes.width != w || e.planes.height != h {
		e.planes.reset(w, h)
	}
	slot := func(k ring.Kind) []byte {
		return e.backings[k].Slot(d.Slots[k])
	}
	f := &flushState{
		exec:     e,
		desc:     d,
		mode:     d.Strategy.Mode,
		planes:   &e.planes,
		frame:    geom.Viewport(w, h),
		target:   surface{pix: target.Pix, stride: target.Stride, base: target.PixOffset(target.Rect.Min.X, target.Rect.Min.Y)},
		paths:    ring.View[record.PathRecord](slot(ring.Paths)),
		paints:   ring.View[record.PaintRecord](slot(ring.Paints)),
		contours: ring.View[record.ContourRecord](slot(ring.Contours)),
		tess:     ring.View[record.TessVertex](slot(ring.Tess)),
		tris:     ring.View[record.TriangleVertex](slot(ring.Triangles)),
		spans:    ring.View[record.GradientSpan](slot(ring.Gradients)),
	}
	f.dst = f.target
	uniforms := ring.View[record.FlushUniforms](slot(ring.Uniforms))
	f.wireframe = uniforms[0].Flags&record.FlushWireframe != 0

	if d.Index == 0 && d.LoadAction == flush.LoadClear {
		f.clearTarget(d.Frame.ClearColor)
	}
	return f
}

func (f *flushState) clearTarget(c [4]float32) {
	px := toBytes(premultiplied(c))
	for y := 0; y < f.planes.height; y++ {
		row := f.target.at(0, y)
		for x := 0; x < f.planes.width; x++ {
			copy(f.target.pix[row+x*4:], px[:])
		}
	}
}

// loadColor copies the target into the color plane and redirects writes
// there.
func (f *flushState) loadColor() {
	p := f.planes
	stride := p.width * 4
	for y := 0; y < p.height; y++ {
		copy(p.color[y*stride:(y+1)*stride], f.target.pix[f.target.at(0, y):])
	}
	f.dst = surface{pix: p.color, stride: stride}
}

// storeColor writes the color plane back to the target.
func (f *flushState) storeColor() {
	p := f.planes
	stride := p.width * 4
	for y := 0; y < p.height; y++ {
		copy(f.target.pix[f.target.at(0, y):f.target.at(0, y)+stride], p.color[y*stride:(y+1)*stride])
	}
	f.dst = f.target
}

func (f *flushState) run(cmd *flush.Command) {
	switch cmd.Kind {
	case flush.CmdLoadColor:
		f.loadColor()
	case flush.CmdStoreColor:
		f.storeColor()
	case flush.CmdAtomicInitialize:
		n := f.desc.Stats.Written.CoverageSamples
		if cap(f.planes.coverage) < n {
			f.planes.coverage = make([]int32, n)
		}
		f.planes.coverage = f.planes.coverage[:n]
		clear(f.planes.coverage)
		f.loadColor()
	case flush.CmdAtomicResolve:
		f.storeColor()
	case flush.CmdBarrier:
		// Commands run in order on the CPU.
	case flush.CmdBatch:
		for i := range cmd.Elements {
			f.element(cmd.Pipeline.DrawType, &cmd.Elements[i])
		}
	}
}

func (f *flushState) element(t draw.Type, el *flush.Element) {
	pr := &f.paths[el.PathID]
	switch t {
	case draw.TypeStencilClipReset:
		f.clipReset(pr)
	case draw.TypeImageMesh:
		f.imageMesh(el, pr)
	case draw.TypeImageRect:
		f.imageRect(pr)
	default:
		f.path(el, pr)
	}
}

func recordBounds(pr *record.PathRecord) geom.IAABB {
	return geom.IAABB{L: pr.Bounds[0], T: pr.Bounds[1], R: pr.Bounds[2], B: pr.Bounds[3]}
}
