package echolocation

import (
	"fmt"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/go-gl/mathgl/mgl32"
)

// quadCorners are the unit corners of the point billboard, counter-clockwise from bottom-left.
var quadCorners = [4]mgl32.Vec2{
	{-1, -1},
	{1, -1},
	{1, 1},
	{-1, 1},
}

// Mesh is the per-instance geometry every point is drawn with.
type Mesh struct {
	Label    string
	Vertices []mgl32.Vec2
	Indices  []uint32
}

// QuadMesh returns the two-triangle billboard drawn once per point.
//
// Returns:
//   - *Mesh: a 4-vertex, 6-index quad
func QuadMesh() *Mesh {
	return &Mesh{
		Label:    "echo_quad",
		Vertices: append([]mgl32.Vec2(nil), quadCorners[:]...),
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

// validate reports whether the mesh can be uploaded and drawn.
func (m *Mesh) validate() error {
	if m == nil {
		return fmt.Errorf("%w: mesh is required", ErrInvalidConfig)
	}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("%w: mesh %q has no geometry", ErrInvalidConfig, m.Label)
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: mesh %q index %d out of range", ErrInvalidConfig, m.Label, idx)
		}
	}
	return nil
}

func (m *Mesh) vertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

func (m *Mesh) indexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}
