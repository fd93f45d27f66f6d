package echolocation

import (
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/camera"
	"github.com/Carmen-Shannon/echolocation/log"
	"github.com/go-gl/mathgl/mgl32"
)

// EcholocatorBuilderOption is a functional option applied to an echolocator during construction via NewEcholocator.
type EcholocatorBuilderOption func(*echolocator)

// WithConfig replaces the whole configuration. Options after it still apply on top.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the configuration
func WithConfig(cfg Config) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg = cfg
	}
}

// WithRayCount sets the number of rays cast per wave.
//
// Parameters:
//   - n: rays per wave
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the ray count
func WithRayCount(n int) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.RayCount = n
	}
}

// WithMaxWaves sets the number of pool slots, which bounds the waves in flight.
//
// Parameters:
//   - n: slot count
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the slot count
func WithMaxWaves(n int) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.MaxWaves = n
	}
}

// WithMaxDistance sets how far each ray travels.
//
// Parameters:
//   - d: the ray range in world units
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the range
func WithMaxDistance(d float32) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.MaxDistance = d
	}
}

// WithPointLifetime sets how long a point stays visible after it spawns.
//
// Parameters:
//   - d: the lifetime
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the lifetime
func WithPointLifetime(d time.Duration) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.PointLifetime = d
	}
}

// WithPropagationSpeed sets the wavefront speed. Zero spawns every point at the trigger time.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the speed
func WithPropagationSpeed(speed float32) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.PropagationSpeed = speed
	}
}

// WithPointSize sets the billboard edge length in clip units.
func WithPointSize(size float32) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.PointSize = size
	}
}

// WithColorTable uses the table's mappings and default color. The table is copied;
// WithTagColor entries are layered on top regardless of option order.
//
// Parameters:
//   - table: the color table
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the color table
func WithColorTable(table *ColorTable) EcholocatorBuilderOption {
	return func(e *echolocator) {
		if table == nil {
			return
		}
		e.colorTable = table
		e.cfg.DefaultColor = table.Default()
	}
}

// WithTagColor maps a target tag to a color.
//
// Parameters:
//   - tag: the target classification
//   - color: the RGBA color of points on targets with that tag
//
// Returns:
//   - EcholocatorBuilderOption: a function that adds the mapping
func WithTagColor(tag string, color mgl32.Vec4) EcholocatorBuilderOption {
	return func(e *echolocator) {
		if e.cfg.TagColors == nil {
			e.cfg.TagColors = make(map[string]mgl32.Vec4)
		}
		e.cfg.TagColors[tag] = color
	}
}

// WithDefaultColor sets the color of points on untagged targets.
func WithDefaultColor(color mgl32.Vec4) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.DefaultColor = color
	}
}

// WithOverflowPolicy sets what Trigger does when the next slot is still held.
//
// Parameters:
//   - policy: OverflowReject, OverflowForceComplete or OverflowPanic
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the policy
func WithOverflowPolicy(policy OverflowPolicy) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.OverflowPolicy = policy
	}
}

// WithStallTimeout abandons a wave still pending this long after its trigger.
// Its slot stays quarantined until the raycast finishes. Zero disables the timeout.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the timeout
func WithStallTimeout(d time.Duration) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.StallTimeout = d
	}
}

// WithClock replaces time.Now as the source of trigger and frame timestamps.
//
// Parameters:
//   - clock: returns the current time
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the clock
func WithClock(clock func() time.Time) EcholocatorBuilderOption {
	return func(e *echolocator) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithSeed makes ray directions reproducible. Zero seeds from the clock.
func WithSeed(seed uint64) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.cfg.Seed = seed
	}
}

// WithCamera supplies the view-projection used when drawing. Without a camera points are drawn
// with the identity matrix.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the camera
func WithCamera(cam camera.Camera) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.camera = cam
	}
}

// WithLogger replaces the package logger.
func WithLogger(l log.Logger) EcholocatorBuilderOption {
	return func(e *echolocator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMesh replaces the per-point billboard quad.
//
// Parameters:
//   - mesh: the instanced mesh, drawn once per point
//
// Returns:
//   - EcholocatorBuilderOption: a function that sets the mesh
func WithMesh(mesh *Mesh) EcholocatorBuilderOption {
	return func(e *echolocator) {
		e.mesh = mesh
	}
}
