// Package backend provides a pluggable abstraction over upload op sinks.
//
// A sink is anything that consumes tilecanvas.UploadOp values: GPU tile
// textures, a CPU mirror, a recorder. The canvas itself never knows which
// sinks exist; callers move ops from Canvas.Frame to a Sink.
//
// # Sink Registration
//
// Sinks are registered via init() functions and opened by name at
// runtime. Importing a sink package registers it:
//
//	import _ "github.com/gogpu/tilecanvas/backend/mirror"
//	import _ "github.com/gogpu/tilecanvas/backend/wgpu"
//
// # Usage
//
//	sink, err := backend.OpenAll([]string{"mirror", "wgpu-noop"}, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sink.Close()
//
//	if h := sink.Handles(); h != nil {
//		cv.BindHandles(h)
//	}
//	for running {
//		ops := cv.Frame()
//		sink.Apply(ops)
//		cv.Recycle(ops)
//	}
//
// # Available Sinks
//
// - "mirror": CPU copies of the tile surfaces (backend/mirror)
// - "wgpu-noop": tile textures on the no-op wgpu HAL device (backend/wgpu)
package backend
