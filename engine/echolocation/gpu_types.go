package echolocation

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/shader"
)

// GPUTypesSource is the canonical WGSL definition of HitRecord, PointRecord, WaveParams and FrameParams.
// Both echolocation shaders pull it in with //@echo:include types.
//
//go:embed assets/echo_types.wgsl
var GPUTypesSource string

//go:embed assets/echo_compute.wgsl
var computeShaderBody string

//go:embed assets/echo_points.wgsl
var pointsShaderBody string

// ComputeShaderSource is the complete WGSL module of the hit-to-point compute stage.
var ComputeShaderSource = shader.MustProcess(computeShaderBody, shaderTypes()...)

// PointsShaderSource is the complete WGSL module of the point billboard render stage.
var PointsShaderSource = shader.MustProcess(pointsShaderBody, shaderTypes()...)

// shaderTypes registers the structs the echolocation shaders reference in annotations.
func shaderTypes() []shader.PreProcessorBuilderOption {
	return []shader.PreProcessorBuilderOption{
		shader.WithStruct("types", GPUTypesSource, ""),
		shader.WithStruct("hit_record", "", "HitRecord"),
		shader.WithStruct("wave_params", "", "WaveParams"),
		shader.WithStruct("frame_params", "", "FrameParams"),
		shader.WithStruct("point_buffer", "", "PointBuffer"),
		shader.WithStruct("point_list", "", "PointList"),
	}
}

// GPUHitRecord is one raycast result in the layout read by the compute stage.
// Matches the WGSL HitRecord struct (see GPUTypesSource).
// Size: 64 bytes (std430, struct aligned to 16).
type GPUHitRecord struct {
	Point    [3]float32 // offset  0: world-space hit point (vec3<f32>)
	Distance float32    // offset 12: distance from the emitter
	Normal   [3]float32 // offset 16: surface normal (vec3<f32>)
	HasHit   uint32     // offset 28: 1 when the ray struck something
	Color    [4]float32 // offset 32: resolved RGBA color
	TargetID uint32     // offset 48: hit target id, 0 on a miss
	_pad     [3]uint32  // offset 52: padding to 64 bytes
}

// Size returns the size of the GPUHitRecord struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUHitRecord) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUHitRecord into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the 64-byte buffer
func (g *GPUHitRecord) Marshal() []byte {
	return append([]byte(nil), common.StructToBytes(g)...)
}

// GPUPointRecord is one renderable point written by the compute stage.
// Matches the WGSL PointRecord struct.
// Size: 32 bytes.
type GPUPointRecord struct {
	Position  [3]float32 // offset  0: world-space position (vec3<f32>)
	SpawnTime float32    // offset 12: seconds since the pipeline epoch at which the point appears
	Color     [4]float32 // offset 16: RGBA color
}

// Size returns the size of the GPUPointRecord struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUPointRecord) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPointRecord into a byte buffer.
//
// Returns:
//   - []byte: the 32-byte buffer
func (g *GPUPointRecord) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.SpawnTime))
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}

// UnmarshalPointRecord decodes a point record from the first 32 bytes of b.
//
// Parameters:
//   - b: at least 32 bytes in GPUPointRecord layout
//
// Returns:
//   - GPUPointRecord: the decoded record
func UnmarshalPointRecord(b []byte) GPUPointRecord {
	var g GPUPointRecord
	for i := range 3 {
		g.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	g.SpawnTime = math.Float32frombits(binary.LittleEndian.Uint32(b[12:]))
	for i := range 4 {
		g.Color[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[16+i*4:]))
	}
	return g
}

// GPUPointHeader prefixes the point buffer. The compute stage bumps Count atomically per appended point.
// Size: 16 bytes, so the point array that follows starts on a 16-byte boundary.
type GPUPointHeader struct {
	Count uint32    // offset 0: number of points appended (atomic<u32> in the compute stage)
	_pad  [3]uint32 // offset 4: padding to 16 bytes
}

// Size returns the size of the GPUPointHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUPointHeader) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPointHeader.
//
// Returns:
//   - []byte: the 16-byte buffer
func (g *GPUPointHeader) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], g.Count)
	return buf
}

// GPUWaveParams is the per-dispatch uniform of the compute stage.
// Size: 16 bytes.
type GPUWaveParams struct {
	PropagationSpeed float32 // offset 0: world units per second the pulse travels
	Timestamp        float32 // offset 4: wave trigger time in seconds since the pipeline epoch
	RayCount         uint32  // offset 8: number of valid hit records
	_pad             uint32  // offset 12: padding to 16 bytes
}

// Size returns the size of the GPUWaveParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUWaveParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUWaveParams for upload.
//
// Returns:
//   - []byte: the 16-byte buffer
func (g *GPUWaveParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.PropagationSpeed))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], g.RayCount)
	return buf
}

// UnmarshalWaveParams decodes wave params from the first 16 bytes of b.
//
// Parameters:
//   - b: at least 16 bytes in GPUWaveParams layout
//
// Returns:
//   - GPUWaveParams: the decoded params
func UnmarshalWaveParams(b []byte) GPUWaveParams {
	return GPUWaveParams{
		PropagationSpeed: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Timestamp:        math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		RayCount:         binary.LittleEndian.Uint32(b[8:12]),
	}
}

// GPUFrameParams is the per-frame uniform of the render stage.
// Size: 80 bytes.
type GPUFrameParams struct {
	ViewProj      [16]float32 // offset  0: combined view-projection matrix (mat4x4<f32>)
	Time          float32     // offset 64: current time in seconds since the pipeline epoch
	PointLifetime float32     // offset 68: seconds a point stays visible after it spawns
	PointSize     float32     // offset 72: billboard edge length in clip units
	_pad          float32     // offset 76: padding to 80 bytes
}

// Size returns the size of the GPUFrameParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUFrameParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameParams for upload.
//
// Returns:
//   - []byte: the 80-byte buffer
func (g *GPUFrameParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.PointLifetime))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.PointSize))
	return buf
}

// GPUIndirectArgs is the argument block of an indexed indirect draw.
// Size: 20 bytes.
type GPUIndirectArgs struct {
	IndexCount    uint32 // offset  0: indices per instance
	InstanceCount uint32 // offset  4: number of instances, written by a buffer copy from the point header
	FirstIndex    uint32 // offset  8
	BaseVertex    int32  // offset 12
	FirstInstance uint32 // offset 16
}

// instanceCountOffset is the byte offset of InstanceCount inside GPUIndirectArgs.
const instanceCountOffset = 4

// Size returns the size of the GPUIndirectArgs struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (20)
func (g *GPUIndirectArgs) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUIndirectArgs for upload.
//
// Returns:
//   - []byte: the 20-byte buffer
func (g *GPUIndirectArgs) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], g.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:8], g.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], g.FirstIndex)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(g.BaseVertex))
	binary.LittleEndian.PutUint32(buf[16:20], g.FirstInstance)
	return buf
}

// Field describes one field of a GPU struct for layout dumps.
type Field struct {
	Name   string
	Offset uintptr
	Size   uintptr
}

// StructLayout is the host-side byte layout of one GPU struct.
type StructLayout struct {
	Name   string
	Size   uintptr
	Fields []Field
}

// Layouts returns the byte layout of every GPU struct. The cmd layout command prints it
// so the WGSL definitions can be checked against Go.
//
// Returns:
//   - []StructLayout: one entry per GPU struct
func Layouts() []StructLayout {
	var hit GPUHitRecord
	var point GPUPointRecord
	var header GPUPointHeader
	var wave GPUWaveParams
	var frame GPUFrameParams
	var args GPUIndirectArgs

	return []StructLayout{
		{"HitRecord", unsafe.Sizeof(hit), []Field{
			{"point", unsafe.Offsetof(hit.Point), unsafe.Sizeof(hit.Point)},
			{"distance", unsafe.Offsetof(hit.Distance), unsafe.Sizeof(hit.Distance)},
			{"normal", unsafe.Offsetof(hit.Normal), unsafe.Sizeof(hit.Normal)},
			{"has_hit", unsafe.Offsetof(hit.HasHit), unsafe.Sizeof(hit.HasHit)},
			{"color", unsafe.Offsetof(hit.Color), unsafe.Sizeof(hit.Color)},
			{"target_id", unsafe.Offsetof(hit.TargetID), unsafe.Sizeof(hit.TargetID)},
		}},
		{"PointRecord", unsafe.Sizeof(point), []Field{
			{"position", unsafe.Offsetof(point.Position), unsafe.Sizeof(point.Position)},
			{"spawn_time", unsafe.Offsetof(point.SpawnTime), unsafe.Sizeof(point.SpawnTime)},
			{"color", unsafe.Offsetof(point.Color), unsafe.Sizeof(point.Color)},
		}},
		{"PointHeader", unsafe.Sizeof(header), []Field{
			{"count", unsafe.Offsetof(header.Count), unsafe.Sizeof(header.Count)},
		}},
		{"WaveParams", unsafe.Sizeof(wave), []Field{
			{"propagation_speed", unsafe.Offsetof(wave.PropagationSpeed), unsafe.Sizeof(wave.PropagationSpeed)},
			{"timestamp", unsafe.Offsetof(wave.Timestamp), unsafe.Sizeof(wave.Timestamp)},
			{"ray_count", unsafe.Offsetof(wave.RayCount), unsafe.Sizeof(wave.RayCount)},
		}},
		{"FrameParams", unsafe.Sizeof(frame), []Field{
			{"view_proj", unsafe.Offsetof(frame.ViewProj), unsafe.Sizeof(frame.ViewProj)},
			{"time", unsafe.Offsetof(frame.Time), unsafe.Sizeof(frame.Time)},
			{"point_lifetime", unsafe.Offsetof(frame.PointLifetime), unsafe.Sizeof(frame.PointLifetime)},
			{"point_size", unsafe.Offsetof(frame.PointSize), unsafe.Sizeof(frame.PointSize)},
		}},
		{"IndirectArgs", unsafe.Sizeof(args), []Field{
			{"index_count", unsafe.Offsetof(args.IndexCount), unsafe.Sizeof(args.IndexCount)},
			{"instance_count", unsafe.Offsetof(args.InstanceCount), unsafe.Sizeof(args.InstanceCount)},
			{"first_index", unsafe.Offsetof(args.FirstIndex), unsafe.Sizeof(args.FirstIndex)},
			{"base_vertex", unsafe.Offsetof(args.BaseVertex), unsafe.Sizeof(args.BaseVertex)},
			{"first_instance", unsafe.Offsetof(args.FirstInstance), unsafe.Sizeof(args.FirstInstance)},
		}},
	}
}
