package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const intersectEpsilon = 1e-6

// Primitive is a piece of scene geometry a ray can strike.
type Primitive interface {
	// Intersect tests the ray origin + t*dir for t >= 0.
	// dir is assumed normalized. The returned normal faces against the ray.
	//
	// Parameters:
	//   - origin: ray origin
	//   - dir: normalized ray direction
	//
	// Returns:
	//   - float32: distance along the ray to the nearest intersection
	//   - mgl32.Vec3: surface normal at the intersection
	//   - bool: false if the ray misses
	Intersect(origin, dir mgl32.Vec3) (float32, mgl32.Vec3, bool)

	// Target returns the identity reported for hits on this primitive.
	// A nil target makes the primitive invisible to rays.
	//
	// Returns:
	//   - *Target: the hit identity
	Target() *Target
}

// Scene is an immutable collection of primitives, safe for concurrent queries.
type Scene interface {
	// Raycast returns the nearest hit within cmd.MaxDistance, or a zero Hit on a miss.
	//
	// Parameters:
	//   - cmd: the ray to evaluate
	//
	// Returns:
	//   - Hit: the nearest intersection
	Raycast(cmd Command) Hit

	// Primitives returns the scene's geometry.
	//
	// Returns:
	//   - []Primitive: the primitives in insertion order
	Primitives() []Primitive
}

type scene struct {
	primitives []Primitive
}

var _ Scene = &scene{}

// NewScene builds a Scene from the given primitives.
func NewScene(primitives ...Primitive) Scene {
	return &scene{primitives: append([]Primitive(nil), primitives...)}
}

func (s *scene) Raycast(cmd Command) Hit {
	dir := cmd.Direction
	if l := dir.Len(); l > intersectEpsilon {
		dir = dir.Mul(1 / l)
	} else {
		return Hit{}
	}

	best := Hit{Distance: float32(math.Inf(1))}
	for _, p := range s.primitives {
		target := p.Target()
		if target == nil {
			continue
		}
		t, n, ok := p.Intersect(cmd.Origin, dir)
		if !ok || t > cmd.MaxDistance || t >= best.Distance {
			continue
		}
		best = Hit{
			Point:    cmd.Origin.Add(dir.Mul(t)),
			Normal:   n,
			Distance: t,
			Target:   target,
		}
	}
	if best.Target == nil {
		return Hit{}
	}
	return best
}

func (s *scene) Primitives() []Primitive {
	return s.primitives
}

// Sphere is a ball centered at Center.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
	target *Target
}

// NewSphere creates a sphere primitive that reports hits as target.
func NewSphere(center mgl32.Vec3, radius float32, target *Target) *Sphere {
	return &Sphere{Center: center, Radius: radius, target: target}
}

func (s *Sphere) Intersect(origin, dir mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		// origin inside the sphere
		t = -b + sq
	}
	if t < 0 {
		return 0, mgl32.Vec3{}, false
	}
	n := origin.Add(dir.Mul(t)).Sub(s.Center).Normalize()
	if n.Dot(dir) > 0 {
		n = n.Mul(-1)
	}
	return t, n, true
}

func (s *Sphere) Target() *Target {
	return s.target
}

// Plane is an infinite plane through Point with the given Normal.
type Plane struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	target *Target
}

// NewPlane creates a plane primitive that reports hits as target. normal is normalized.
func NewPlane(point, normal mgl32.Vec3, target *Target) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize(), target: target}
}

func (p *Plane) Intersect(origin, dir mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	denom := dir.Dot(p.Normal)
	if float32(math.Abs(float64(denom))) < intersectEpsilon {
		return 0, mgl32.Vec3{}, false
	}
	t := p.Point.Sub(origin).Dot(p.Normal) / denom
	if t < 0 {
		return 0, mgl32.Vec3{}, false
	}
	n := p.Normal
	if denom > 0 {
		n = n.Mul(-1)
	}
	return t, n, true
}

func (p *Plane) Target() *Target {
	return p.target
}

// Box is an axis-aligned box spanning Min to Max.
type Box struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	target *Target
}

// NewBox creates an axis-aligned box primitive that reports hits as target.
func NewBox(lo, hi mgl32.Vec3, target *Target) *Box {
	return &Box{Min: lo, Max: hi, target: target}
}

// Intersect uses the slab method. The normal is taken from the axis the ray enters through.
func (b *Box) Intersect(origin, dir mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	nearAxis, farAxis := -1, -1

	for axis := 0; axis < 3; axis++ {
		if float32(math.Abs(float64(dir[axis]))) < intersectEpsilon {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t0 := (b.Min[axis] - origin[axis]) * inv
		t1 := (b.Max[axis] - origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear, nearAxis = t0, axis
		}
		if t1 < tFar {
			tFar, farAxis = t1, axis
		}
		if tNear > tFar {
			return 0, mgl32.Vec3{}, false
		}
	}

	t, axis := tNear, nearAxis
	if t < 0 {
		t, axis = tFar, farAxis
	}
	if t < 0 || axis < 0 {
		return 0, mgl32.Vec3{}, false
	}

	var n mgl32.Vec3
	if dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return t, n, true
}

func (b *Box) Target() *Target {
	return b.target
}
