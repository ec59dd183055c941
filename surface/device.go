// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device provides the GPU device and queue backing a pipeline context.
//
// The broker receives the device from a [DeviceOpener], it does not create
// one itself. This keeps device selection (adapter preference, limits,
// sharing with a host application) outside the broker, and lets tests
// substitute a fake device.
type Device interface {
	// Device returns the HAL device handle.
	Device() hal.Device

	// Queue returns the HAL queue handle.
	Queue() hal.Queue

	// Close releases the device and any resources created from it.
	Close()
}

// DeviceOpener opens a GPU device for pipeline contexts. A broker without
// an opener reports UnsupportedBackendError for KindPipeline.
type DeviceOpener func() (Device, error)

// halDevice owns a wgpu HAL instance, device and queue.
type halDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

func (d *halDevice) Device() hal.Device { return d.device }
func (d *halDevice) Queue() hal.Queue   { return d.queue }

func (d *halDevice) Close() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// OpenDefaultDevice opens a device on the first usable GPU adapter,
// preferring discrete over integrated GPUs. It is the standard opener for
// hosts without their own device management:
//
//	broker := surface.NewBroker(w, h,
//	    surface.WithDeviceOpener(surface.OpenDefaultDevice))
func OpenDefaultDevice() (Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("GPU device opened", "adapter", selected.Info.Name)
	return &halDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}
