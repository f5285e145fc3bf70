// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/pls"
)

// Scene is the file format read by plsdemo.
type Scene struct {
	Width      int     `toml:"width" yaml:"width"`
	Height     int     `toml:"height" yaml:"height"`
	Background string  `toml:"background" yaml:"background"`
	Clips      []Clip  `toml:"clips" yaml:"clips"`
	Shapes     []Shape `toml:"shapes" yaml:"shapes"`
}

// Clip is a named clip region. Shapes refer to it by name; Within nests it
// inside an earlier clip.
type Clip struct {
	Name     string    `toml:"name" yaml:"name"`
	Within   string    `toml:"within" yaml:"within"`
	Geometry Geometry  `toml:"geometry" yaml:"geometry"`
	Rule     string    `toml:"rule" yaml:"rule"`
	Xform    Transform `toml:"transform" yaml:"transform"`
}

// Shape is one path draw.
type Shape struct {
	Geometry Geometry   `toml:"geometry" yaml:"geometry"`
	Color    string     `toml:"color" yaml:"color"`
	Gradient *Gradient  `toml:"gradient" yaml:"gradient"`
	Stroke   *StrokeDef `toml:"stroke" yaml:"stroke"`
	Rule     string     `toml:"rule" yaml:"rule"`
	Blend    string     `toml:"blend" yaml:"blend"`
	Feather  float64    `toml:"feather" yaml:"feather"`
	Clip     string     `toml:"clip" yaml:"clip"`
	Xform    Transform  `toml:"transform" yaml:"transform"`
}

// Geometry selects a path builder. Params are interpreted per kind:
//
//	rect:    x, y, w, h
//	rounded: x, y, w, h, r
//	circle:  cx, cy, r
//	ellipse: cx, cy, rx, ry
//	star:    cx, cy, r, points
//	polygon: cx, cy, r, sides
//	poly:    x0, y0, x1, y1, ... (open unless Closed)
type Geometry struct {
	Kind   string    `toml:"kind" yaml:"kind"`
	Params []float64 `toml:"params" yaml:"params"`
	Closed bool      `toml:"closed" yaml:"closed"`
}

// Gradient is a linear or radial gradient.
type Gradient struct {
	Kind   string    `toml:"kind" yaml:"kind"`
	Points []float64 `toml:"points" yaml:"points"`
	Stops  []Stop    `toml:"stops" yaml:"stops"`
}

// Stop is one gradient stop.
type Stop struct {
	Offset float64 `toml:"offset" yaml:"offset"`
	Color  string  `toml:"color" yaml:"color"`
}

// StrokeDef strokes a shape instead of filling it.
type StrokeDef struct {
	Width float64 `toml:"width" yaml:"width"`
	Join  string  `toml:"join" yaml:"join"`
	Cap   string  `toml:"cap" yaml:"cap"`
}

// Transform scales a shape, rotates it by Rotate degrees and then
// translates it.
type Transform struct {
	Translate []float64 `toml:"translate" yaml:"translate"`
	Rotate    float64   `toml:"rotate" yaml:"rotate"`
	Scale     []float64 `toml:"scale" yaml:"scale"`
}

// decoder is implemented by the toml and yaml decoders.
type decoder interface {
	Decode(v any) error
}

type decoderFunc func(r io.Reader) decoder

func newDecoderFunc[T decoder](f func(r io.Reader) T) decoderFunc {
	return func(r io.Reader) decoder { return f(r) }
}

var decoders = map[string]decoderFunc{
	".toml": newDecoderFunc(toml.NewDecoder),
	".yaml": newDecoderFunc(yaml.NewDecoder),
	".yml":  newDecoderFunc(yaml.NewDecoder),
}

// loadScene reads a scene, choosing the format by file extension.
func loadScene(filename string) (*Scene, error) {
	f, ok := decoders[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("plsdemo: %s: unknown scene format", filename)
	}
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return readScene(bufio.NewReader(fp), f)
}

func readScene(r io.Reader, f decoderFunc) (*Scene, error) {
	var s Scene
	if err := f(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("plsdemo: decode scene: %w", err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("plsdemo: scene size %dx%d", s.Width, s.Height)
	}
	return &s, nil
}

func (g Geometry) path() (*pls.Path, error) {
	p := pls.NewPath()
	want := map[string]int{"rect": 4, "rounded": 5, "circle": 3, "ellipse": 4, "star": 4, "polygon": 4}
	if n, ok := want[g.Kind]; ok && len(g.Params) != n {
		return nil, fmt.Errorf("plsdemo: %s takes %d params, got %d", g.Kind, n, len(g.Params))
	}
	a := g.Params
	switch g.Kind {
	case "rect":
		p.Rectangle(a[0], a[1], a[2], a[3])
	case "rounded":
		p.RoundedRectangle(a[0], a[1], a[2], a[3], a[4])
	case "circle":
		p.Circle(a[0], a[1], a[2])
	case "ellipse":
		p.Ellipse(a[0], a[1], a[2], a[3])
	case "star":
		n := max(int(a[3]), 2)
		for i := range 2 * n {
			r := a[2]
			if i%2 == 1 {
				r /= 2.5
			}
			ang := -math.Pi/2 + float64(i)*math.Pi/float64(n)
			vertex(p, i, a[0]+r*math.Cos(ang), a[1]+r*math.Sin(ang))
		}
		p.Close()
	case "polygon":
		n := max(int(a[3]), 3)
		for i := range n {
			ang := 2 * math.Pi * float64(i) / float64(n)
			vertex(p, i, a[0]+a[2]*math.Cos(ang), a[1]+a[2]*math.Sin(ang))
		}
		p.Close()
	case "poly":
		if len(a) < 4 || len(a)%2 != 0 {
			return nil, fmt.Errorf("plsdemo: poly needs coordinate pairs, got %d values", len(a))
		}
		for i := 0; i < len(a); i += 2 {
			vertex(p, i, a[i], a[i+1])
		}
		if g.Closed {
			p.Close()
		}
	default:
		return nil, fmt.Errorf("plsdemo: unknown geometry %q", g.Kind)
	}
	return p, nil
}

func vertex(p *pls.Path, i int, x, y float64) {
	if i == 0 {
		p.MoveTo(x, y)
	} else {
		p.LineTo(x, y)
	}
}

func (t Transform) matrix() pls.Matrix {
	m := pls.Identity()
	if len(t.Translate) == 2 {
		m = m.Multiply(pls.Translate(t.Translate[0], t.Translate[1]))
	}
	if t.Rotate != 0 {
		m = m.Multiply(pls.Rotate(t.Rotate * math.Pi / 180))
	}
	if len(t.Scale) == 2 {
		m = m.Multiply(pls.Scale(t.Scale[0], t.Scale[1]))
	}
	return m
}

func parseColor(s string, fallback pls.RGBA) (pls.RGBA, error) {
	if s == "" {
		return fallback, nil
	}
	c, ok := pls.Hex(s)
	if !ok {
		return pls.RGBA{}, fmt.Errorf("plsdemo: bad color %q", s)
	}
	return c, nil
}

func parseRule(s string) (pls.FillRule, error) {
	switch s {
	case "", "nonzero":
		return pls.FillRuleNonZero, nil
	case "evenodd":
		return pls.FillRuleEvenOdd, nil
	case "clockwise":
		return pls.FillRuleClockwise, nil
	}
	return 0, fmt.Errorf("plsdemo: unknown fill rule %q", s)
}

var blendModes = map[string]pls.BlendMode{
	"":           pls.BlendSrcOver,
	"srcOver":    pls.BlendSrcOver,
	"screen":     pls.BlendScreen,
	"overlay":    pls.BlendOverlay,
	"darken":     pls.BlendDarken,
	"lighten":    pls.BlendLighten,
	"colorDodge": pls.BlendColorDodge,
	"colorBurn":  pls.BlendColorBurn,
	"hardLight":  pls.BlendHardLight,
	"softLight":  pls.BlendSoftLight,
	"difference": pls.BlendDifference,
	"exclusion":  pls.BlendExclusion,
	"multiply":   pls.BlendMultiply,
	"hue":        pls.BlendHue,
	"saturation": pls.BlendSaturation,
	"color":      pls.BlendColor,
	"luminosity": pls.BlendLuminosity,
}

func (s Shape) paint() (*pls.Paint, error) {
	var p *pls.Paint
	if g := s.Gradient; g != nil {
		stops := make([]pls.GradientStop, len(g.Stops))
		for i, st := range g.Stops {
			c, err := parseColor(st.Color, pls.Black)
			if err != nil {
				return nil, err
			}
			stops[i] = pls.GradientStop{Offset: st.Offset, Color: c}
		}
		switch {
		case g.Kind == "linear" && len(g.Points) == 4:
			p = pls.LinearGradient(g.Points[0], g.Points[1], g.Points[2], g.Points[3], stops...)
		case g.Kind == "radial" && len(g.Points) == 3:
			p = pls.RadialGradient(g.Points[0], g.Points[1], g.Points[2], stops...)
		default:
			return nil, fmt.Errorf("plsdemo: bad %s gradient with %d points", g.Kind, len(g.Points))
		}
	} else {
		c, err := parseColor(s.Color, pls.Black)
		if err != nil {
			return nil, err
		}
		p = pls.SolidPaint(c)
	}
	rule, err := parseRule(s.Rule)
	if err != nil {
		return nil, err
	}
	p.FillRule = rule
	p.Feather = s.Feather
	if st := s.Stroke; st != nil {
		stroke := pls.Stroke{Width: st.Width}
		switch st.Join {
		case "", "miter":
		case "round":
			stroke.Join = pls.LineJoinRound
		case "bevel":
			stroke.Join = pls.LineJoinBevel
		default:
			return nil, fmt.Errorf("plsdemo: unknown join %q", st.Join)
		}
		switch st.Cap {
		case "", "butt":
		case "round":
			stroke.Cap = pls.LineCapRound
		case "square":
			stroke.Cap = pls.LineCapSquare
		default:
			return nil, fmt.Errorf("plsdemo: unknown cap %q", st.Cap)
		}
		p.Stroke = &stroke
	}
	return p, nil
}
