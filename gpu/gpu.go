// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu creates executors that render pls frames on a gogpu/wgpu
// device. Pass the executor to pls.WithExecutor.
//
// Usage:
//
//	exec, err := gpu.NewExecutorFromProvider(app)
//	if err != nil {
//		return err
//	}
//	ctx, err := pls.NewContext(pls.WithExecutor(exec))
//
// Frames target either an *image.RGBA, which is read back after every
// flush, or a SurfaceTarget, which resolves into a swapchain view.
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	gpuimpl "github.com/gogpu/pls/internal/gpu"
)

// ErrNoHAL is returned when a device provider does not expose hal objects.
var ErrNoHAL = errors.New("gpu: provider does not expose hal device and queue")

// Executor renders flushes with MSAA on a hal device.
type Executor = gpuimpl.Executor

// SurfaceTarget is a frame target that resolves into a caller-owned
// BGRA8Unorm texture view.
type SurfaceTarget = gpuimpl.SurfaceTarget

// Errors returned by the executor.
var (
	ErrNilDevice           = gpuimpl.ErrNilDevice
	ErrPipelineCreation    = gpuimpl.ErrPipelineCreation
	ErrResourceCreation    = gpuimpl.ErrResourceCreation
	ErrUnsupportedDrawType = gpuimpl.ErrUnsupportedDrawType
	ErrUnsupportedMode     = gpuimpl.ErrUnsupportedMode
	ErrInvalidTarget       = gpuimpl.ErrInvalidTarget
)

// NewExecutor creates an executor on device and queue.
func NewExecutor(device hal.Device, queue hal.Queue) (*Executor, error) {
	return gpuimpl.New(device, queue)
}

// NewExecutorFromProvider shares the device of an external provider, such
// as a gogpu application. The provider must also implement HalDevice() any
// and HalQueue() any returning hal.Device and hal.Queue.
func NewExecutorFromProvider(provider gpucontext.DeviceProvider) (*Executor, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatBGRA8Unorm && f != gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("gpu: surface format %v, surface targets must be BGRA8Unorm", f)
	}
	return gpuimpl.New(device, queue)
}
