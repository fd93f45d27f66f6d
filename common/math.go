package common

import (
	"math"
	"math/rand/v2"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// CeilDiv returns n divided by d, rounded up. Used to size compute dispatches.
//
// Parameters:
//   - n: the number of work items
//   - d: the group size, must be non-zero
//
// Returns:
//   - uint32: the number of groups needed to cover n items
func CeilDiv(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// RandomUnitVector returns a direction drawn uniformly over the unit sphere.
//
// Parameters:
//   - rng: the random source to draw from
//
// Returns:
//   - mgl32.Vec3: a vector of length 1
func RandomUnitVector(rng *rand.Rand) mgl32.Vec3 {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(1 - z*z)
	return mgl32.Vec3{
		float32(r * math.Cos(phi)),
		float32(r * math.Sin(phi)),
		float32(z),
	}
}

// PerspectiveZO builds a right-handed perspective projection that maps depth to [0, 1],
// the WebGPU clip space convention. mgl32.Perspective targets OpenGL's [-1, 1] range.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2))
	nf := 1 / (near - far)
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, -1,
		0, 0, near * far * nf, 0,
	}
}
