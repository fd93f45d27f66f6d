package raycast

import "github.com/go-gl/mathgl/mgl32"

// Command describes a single ray to evaluate.
type Command struct {
	Origin      mgl32.Vec3
	Direction   mgl32.Vec3
	MaxDistance float32
}

// Target identifies the object a ray hit. Tag is the classification used for color lookup.
type Target struct {
	ID  uint32
	Tag string
}

// Hit is the outcome of evaluating one Command. A nil Target means the ray hit nothing
// within its max distance, in which case the remaining fields are zero.
type Hit struct {
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Distance float32
	Target   *Target
}

// HasHit reports whether the ray struck anything.
func (h Hit) HasHit() bool {
	return h.Target != nil
}

// Status is the non-blocking completion state of a batch.
type Status int

const (
	// StatusPending means the batch results are not yet safe to read.
	StatusPending Status = iota

	// StatusReady means every result of the batch has been written.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}
