package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithPivot sets the point the controller orbits around.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the pivot
func WithPivot(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - lo: minimum radius
//   - hi: maximum radius
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithElevationBounds sets the minimum and maximum elevation in radians.
//
// Parameters:
//   - lo: minimum elevation
//   - hi: maximum elevation
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation bounds
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation, cc.maxElevation = lo, hi
	}
}
