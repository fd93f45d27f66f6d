package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns a position orbiting a target on a sphere described by
// radius, azimuth and elevation. The camera reads from it on Update; the demo CLI also
// uses one to move the echolocation emitter.
type CameraController interface {
	// Position returns the world-space position derived from the spherical coordinates.
	//
	// Returns:
	//   - mgl32.Vec3: world-space position
	Position() mgl32.Vec3

	// Target returns the orbit pivot.
	//
	// Returns:
	//   - mgl32.Vec3: world-space pivot
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the position.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Orbit rotates around the pivot. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - deltaAzimuth: change of the horizontal angle in radians
	//   - deltaElevation: change of the vertical angle in radians
	Orbit(deltaAzimuth, deltaElevation float32)

	// Zoom moves toward the pivot. Positive delta zooms in. The radius is clamped to the configured bounds.
	//
	// Parameters:
	//   - delta: distance to move
	Zoom(delta float32)

	// Radius returns the distance from the pivot.
	//
	// Returns:
	//   - float32: current orbit radius
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32
}
