package echolocation

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
)

// PointSink is where a reaped wave's hit records become drawable points.
// The implementation appends into each slot's point buffer with a GPU-side counter and
// copies that counter into the slot's draw arguments.
//
// Reset and Write must be recorded inside one compute frame, Reset first.
type PointSink interface {
	// Reset zeroes the slot's live point count so the next Write starts an empty buffer.
	//
	// Parameters:
	//   - slot: the pool slot
	Reset(slot int)

	// Write uploads records and params, dispatches the compute stage and copies the resulting
	// point count into the slot's draw arguments.
	//
	// Parameters:
	//   - slot: the pool slot
	//   - records: one hit record per ray, at most the pool's ray count
	//   - params: the wave's scalar parameters
	//
	// Returns:
	//   - error: if there are too many records or the renderer rejects the work
	Write(slot int, records []GPUHitRecord, params GPUWaveParams) error

	// LiveCount reads the slot's draw instance count back from the GPU. Blocks; for diagnostics.
	//
	// Parameters:
	//   - slot: the pool slot
	//
	// Returns:
	//   - int: the instance count the slot's next draw uses
	//   - error: if the readback fails
	LiveCount(slot int) (int, error)
}

type appendPointSink struct {
	renderer renderer.Renderer
	pool     *ResourcePool
}

var _ PointSink = &appendPointSink{}

// NewPointSink creates the append-buffer PointSink over a pool's slots.
//
// Parameters:
//   - r: the renderer the pool was built on
//   - pool: the resource pool
//
// Returns:
//   - PointSink: the point sink
func NewPointSink(r renderer.Renderer, pool *ResourcePool) PointSink {
	return &appendPointSink{renderer: r, pool: pool}
}

func (s *appendPointSink) Reset(slot int) {
	var header GPUPointHeader
	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Buffer: s.pool.Slot(slot).Points, Offset: 0, Data: header.Marshal()},
	})
}

func (s *appendPointSink) Write(slot int, records []GPUHitRecord, params GPUWaveParams) error {
	if len(records) > s.pool.RayCount() {
		return fmt.Errorf("%w: %d records exceed slot capacity %d", ErrInvalidConfig, len(records), s.pool.RayCount())
	}
	ps := s.pool.Slot(slot)
	params.RayCount = uint32(len(records))

	writes := []bind_group_provider.BufferWrite{
		{Buffer: ps.WaveParams, Data: params.Marshal()},
	}
	if len(records) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Buffer: ps.RawHits, Data: common.SliceToBytes(records)})
	}
	s.renderer.WriteBuffers(writes)

	groups := common.CeilDiv(uint32(len(records)), WorkgroupSize)
	if groups > 0 {
		if err := s.renderer.DispatchCompute(ComputePipelineKey, ps.ComputeGroup, [3]uint32{groups, 1, 1}); err != nil {
			return fmt.Errorf("slot %d: dispatch: %w", slot, err)
		}
	}
	if err := s.renderer.CopyBufferToBuffer(ps.Points, 0, ps.DrawArgs, instanceCountOffset, 4); err != nil {
		return fmt.Errorf("slot %d: copy point count: %w", slot, err)
	}
	return nil
}

func (s *appendPointSink) LiveCount(slot int) (int, error) {
	b, err := s.renderer.ReadBuffer(s.pool.Slot(slot).DrawArgs, instanceCountOffset, 4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}
