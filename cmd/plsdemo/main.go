// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command plsdemo renders a scene through the pls flush pipeline on the
// software executor and writes it as a PNG.
//
// Scenes are TOML or YAML files; without -scene a built-in scene is drawn.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/pls"
)

var modes = map[string]pls.InterlockMode{
	"raster":    pls.RasterOrdering,
	"atomics":   pls.Atomics,
	"loadstore": pls.LoadStore,
	"msaa":      pls.MSAA,
}

func main() {
	var (
		width     = flag.Int("width", 800, "image width when no scene is given")
		height    = flag.Int("height", 600, "image height when no scene is given")
		scene     = flag.String("scene", "", "scene file (.toml, .yaml or .yml)")
		output    = flag.String("output", "plsdemo.png", "output file")
		mode      = flag.String("mode", "", "interlock mode override: raster, atomics, loadstore or msaa")
		wireframe = flag.Bool("wireframe", false, "draw triangle edges only")
		threshold = flag.Int("threshold", 0, "segment count at which fills are triangulated (0 keeps the default)")
		verbose   = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		pls.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	s := defaultScene(*width, *height)
	if *scene != "" {
		var err error
		if s, err = loadScene(*scene); err != nil {
			log.Fatalf("Failed to load scene: %v", err)
		}
	}

	opts := []pls.Option{pls.WithTriangulationThreshold(*threshold)}
	ro := renderOptions{Wireframe: *wireframe}
	if *mode != "" {
		m, ok := modes[*mode]
		if !ok {
			log.Fatalf("Unknown mode %q", *mode)
		}
		opts = append(opts, pls.WithInterlockOverride(m))
	}

	pc, err := pls.NewContext(opts...)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer pc.Close()

	img, err := render(context.Background(), pc, s, ro)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := writePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Rendered %s (%dx%d, %s, %d flushes)\n", *output, s.Width, s.Height, pc.FrameStrategy().Mode, len(pc.Stats()))
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
