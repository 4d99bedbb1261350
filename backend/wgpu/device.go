package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/tilecanvas"
)

// ErrNoAdapter is returned when an instance exposes no adapters.
var ErrNoAdapter = errors.New("wgpu: no adapter available")

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Device is an open HAL device with its queue and the instance it came from.
type Device struct {
	Info   GPUInfo
	Device hal.Device
	Queue  hal.Queue

	instance hal.Instance
}

// OpenDevice opens the first adapter of api with default limits.
func OpenDevice(api hal.Backend) (*Device, error) {
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	exposed := adapters[0]
	open, err := exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d := &Device{
		Info: GPUInfo{
			Name:       exposed.Info.Name,
			Vendor:     exposed.Info.Vendor,
			DeviceType: exposed.Info.DeviceType,
			Backend:    exposed.Info.Backend,
			Driver:     exposed.Info.Driver,
		},
		Device:   open.Device,
		Queue:    open.Queue,
		instance: instance,
	}
	tilecanvas.Logger().Info("wgpu: device opened", "gpu", d.Info.String(), "driver", d.Info.Driver)
	return d, nil
}

// Close destroys the device and its instance. Resources created on the
// device must be destroyed first.
func (d *Device) Close() {
	d.Device.Destroy()
	d.instance.Destroy()
}
