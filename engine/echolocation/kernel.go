package echolocation

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Compute group 0 bindings, matching echo_compute.wgsl.
const (
	computeBindingParams = 0
	computeBindingHits   = 1
	computeBindingPoints = 2
)

// Render group 0 bindings, matching echo_points.wgsl.
const (
	renderBindingFrame  = 0
	renderBindingPoints = 1
)

// WorkgroupSize is the compute stage's @workgroup_size.
const WorkgroupSize = 64

// Byte sizes of the records exchanged with the GPU.
const (
	hitRecordSize   = 64
	pointRecordSize = 32
	pointHeaderSize = 16
	drawArgsSize    = 20
)

// ProcessHit turns one hit record into a point record. Misses produce no point.
// The point spawns when the pulse front reaches it; a non-positive speed spawns it at the wave timestamp.
//
// Parameters:
//   - hit: the raycast result
//   - params: the wave's scalar parameters
//
// Returns:
//   - GPUPointRecord: the point to append
//   - bool: false when the hit is a miss and nothing should be appended
func ProcessHit(hit GPUHitRecord, params GPUWaveParams) (GPUPointRecord, bool) {
	if hit.HasHit == 0 {
		return GPUPointRecord{}, false
	}
	spawn := params.Timestamp
	if params.PropagationSpeed > 0 {
		spawn += hit.Distance / params.PropagationSpeed
	}
	return GPUPointRecord{
		Position:  hit.Point,
		SpawnTime: spawn,
		Color:     hit.Color,
	}, true
}

// PointAlpha is the per-point fade applied by the vertex stage.
// It is 0 before the point spawns, falls linearly from 1 to 0 over lifetime, and stays 0 afterwards.
//
// Parameters:
//   - now: the current time in seconds since the pipeline epoch
//   - spawn: the point's spawn time
//   - lifetime: seconds the point stays visible
//
// Returns:
//   - float32: the alpha multiplier in [0, 1]
func PointAlpha(now, spawn, lifetime float32) float32 {
	if now < spawn || lifetime <= 0 {
		return 0
	}
	age := now - spawn
	if age >= lifetime {
		return 0
	}
	return 1 - age/lifetime
}

// BillboardCorner returns the clip-space offset of one corner of a point's quad.
//
// Parameters:
//   - vertexIndex: the quad vertex, taken modulo 4
//   - size: the billboard edge length
//
// Returns:
//   - mgl32.Vec2: the corner offset from the point's center
func BillboardCorner(vertexIndex uint32, size float32) mgl32.Vec2 {
	return quadCorners[vertexIndex%4].Mul(size * 0.5)
}

// computeKernel is the CPU form of cs_main for the software renderer.
// Invocations run one at a time, so the header count is bumped without atomics.
func computeKernel(bindings map[int][]byte, invocationID uint32) {
	params := UnmarshalWaveParams(bindings[computeBindingParams])
	hits := bindings[computeBindingHits]
	points := bindings[computeBindingPoints]

	if invocationID >= params.RayCount || (invocationID+1)*hitRecordSize > uint32(len(hits)) {
		return
	}
	point, ok := ProcessHit(unmarshalHitRecord(hits[invocationID*hitRecordSize:]), params)
	if !ok {
		return
	}

	slot := binary.LittleEndian.Uint32(points[0:4])
	binary.LittleEndian.PutUint32(points[0:4], slot+1)
	capacity := (uint32(len(points)) - pointHeaderSize) / pointRecordSize
	if slot >= capacity {
		return
	}
	copy(points[pointHeaderSize+slot*pointRecordSize:], point.Marshal())
}

func unmarshalHitRecord(b []byte) GPUHitRecord {
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	return GPUHitRecord{
		Point:    [3]float32{f(0), f(4), f(8)},
		Distance: f(12),
		Normal:   [3]float32{f(16), f(20), f(24)},
		HasHit:   binary.LittleEndian.Uint32(b[28:]),
		Color:    [4]float32{f(32), f(36), f(40), f(44)},
		TargetID: binary.LittleEndian.Uint32(b[48:]),
	}
}
