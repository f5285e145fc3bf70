// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/pls"
)

// renderOptions are the frame settings taken from the command line.
type renderOptions struct {
	Override  *pls.InterlockMode
	Wireframe bool
}

// render draws s into a new image with one frame on ctx.
func render(ctx context.Context, pc *pls.Context, s *Scene, ro renderOptions) (*image.RGBA, error) {
	bg, err := parseColor(s.Background, pls.White)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	err = pc.BeginFrame(pls.FrameDescriptor{
		Target:            img,
		Width:             s.Width,
		Height:            s.Height,
		LoadAction:        pls.LoadClear,
		ClearColor:        bg,
		InterlockOverride: ro.Override,
		Wireframe:         ro.Wireframe,
	})
	if err != nil {
		return nil, err
	}

	clips := make(map[string]pls.ClipID, len(s.Clips))
	for _, c := range s.Clips {
		if err := addClip(ctx, pc, clips, c); err != nil {
			return nil, err
		}
	}
	for i, sh := range s.Shapes {
		if err := drawShape(ctx, pc, clips, sh); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
	}
	if err := pc.Flush(ctx); err != nil {
		return nil, err
	}
	return img, nil
}

func lookupClip(clips map[string]pls.ClipID, name string) (pls.ClipID, error) {
	if name == "" {
		return 0, nil
	}
	id, ok := clips[name]
	if !ok {
		return 0, fmt.Errorf("plsdemo: unknown clip %q", name)
	}
	return id, nil
}

func addClip(ctx context.Context, pc *pls.Context, clips map[string]pls.ClipID, c Clip) error {
	if c.Name == "" {
		return fmt.Errorf("plsdemo: clip without a name")
	}
	if _, dup := clips[c.Name]; dup {
		return fmt.Errorf("plsdemo: duplicate clip %q", c.Name)
	}
	outer, err := lookupClip(clips, c.Within)
	if err != nil {
		return err
	}
	path, err := c.Geometry.path()
	if err != nil {
		return err
	}
	rule, err := parseRule(c.Rule)
	if err != nil {
		return err
	}
	id, err := pc.Clip(ctx, path, c.Xform.matrix(), rule, outer)
	if err != nil {
		return fmt.Errorf("clip %q: %w", c.Name, err)
	}
	clips[c.Name] = id
	return nil
}

func drawShape(ctx context.Context, pc *pls.Context, clips map[string]pls.ClipID, sh Shape) error {
	path, err := sh.Geometry.path()
	if err != nil {
		return err
	}
	paint, err := sh.paint()
	if err != nil {
		return err
	}
	blend, ok := blendModes[sh.Blend]
	if !ok {
		return fmt.Errorf("plsdemo: unknown blend mode %q", sh.Blend)
	}
	clip, err := lookupClip(clips, sh.Clip)
	if err != nil {
		return err
	}
	h, err := pc.Draw(ctx, path, paint, sh.Xform.matrix(), blend, clip)
	if err != nil {
		return err
	}
	pls.Logger().Debug("plsdemo: draw", "draw", h.String())
	return nil
}

// defaultScene is rendered when no scene file is given.
func defaultScene(width, height int) *Scene {
	w, h := float64(width), float64(height)
	return &Scene{
		Width:      width,
		Height:     height,
		Background: "#f4f1ea",
		Clips: []Clip{
			{Name: "window", Geometry: Geometry{Kind: "rounded", Params: []float64{w * 0.55, h * 0.1, w * 0.4, h * 0.8, 24}}},
			{Name: "porthole", Within: "window", Geometry: Geometry{Kind: "circle", Params: []float64{w * 0.75, h * 0.5, h * 0.3}}},
		},
		Shapes: []Shape{
			{
				Geometry: Geometry{Kind: "rect", Params: []float64{0, 0, w, h}},
				Gradient: &Gradient{Kind: "linear", Points: []float64{0, 0, 0, h}, Stops: []Stop{
					{Offset: 0, Color: "#1d3557"}, {Offset: 1, Color: "#457b9d"},
				}},
				Clip: "window",
			},
			{Geometry: Geometry{Kind: "star", Params: []float64{w * 0.25, h * 0.5, h * 0.3, 7}}, Color: "#e63946", Rule: "evenodd"},
			{Geometry: Geometry{Kind: "circle", Params: []float64{w * 0.75, h * 0.5, h * 0.2}}, Color: "#f1faee", Clip: "porthole"},
			{
				Geometry: Geometry{Kind: "polygon", Params: []float64{w * 0.75, h * 0.5, h * 0.25, 1200}},
				Color:    "#a8dadc", Blend: "multiply", Clip: "porthole",
			},
			{
				Geometry: Geometry{Kind: "ellipse", Params: []float64{w * 0.25, h * 0.5, h * 0.35, h * 0.2}},
				Stroke:   &StrokeDef{Width: 6, Join: "round"},
				Color:    "#1d3557",
			},
			{
				Geometry: Geometry{Kind: "rect", Params: []float64{-40, -10, 80, 20}},
				Color:    "#2a9d8f",
				Xform:    Transform{Translate: []float64{w * 0.5, h * 0.9}, Rotate: -15},
			},
		},
	}
}
