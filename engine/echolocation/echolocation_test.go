package echolocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeHandle finishes only when the test says so, unless its raycaster is automatic.
type fakeHandle struct {
	commands  []raycast.Command
	results   []raycast.Hit
	resolve   func(i int, cmd raycast.Command) raycast.Hit
	ready     bool
	stuck     bool
	completes int
}

var _ raycast.Handle = &fakeHandle{}

func (h *fakeHandle) finish() {
	if h.ready {
		return
	}
	for i, cmd := range h.commands {
		h.results[i] = h.resolve(i, cmd)
	}
	h.ready = true
}

func (h *fakeHandle) Poll() raycast.Status {
	if h.ready {
		return raycast.StatusReady
	}
	return raycast.StatusPending
}

func (h *fakeHandle) IsComplete() bool {
	return h.ready
}

func (h *fakeHandle) Complete() {
	h.completes++
	h.finish()
}

func (h *fakeHandle) Wait(ctx context.Context) error {
	if h.stuck && !h.ready {
		<-ctx.Done()
		return ctx.Err()
	}
	h.finish()
	return nil
}

func (h *fakeHandle) Len() int {
	return len(h.commands)
}

type fakeRaycaster struct {
	resolve   func(i int, cmd raycast.Command) raycast.Hit
	manual    bool
	submitErr error
	handles   []*fakeHandle
	flushes   int
}

var _ raycast.Raycaster = &fakeRaycaster{}

func (f *fakeRaycaster) SubmitBatch(commands []raycast.Command, results []raycast.Hit) (raycast.Handle, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if len(commands) != len(results) {
		return nil, raycast.ErrLengthMismatch
	}
	h := &fakeHandle{commands: commands, results: results, resolve: f.resolve}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeRaycaster) Flush() {
	f.flushes++
	if f.manual {
		return
	}
	for _, h := range f.handles {
		h.finish()
	}
}

func (f *fakeRaycaster) Pending() int {
	n := 0
	for _, h := range f.handles {
		if !h.ready {
			n++
		}
	}
	return n
}

func (f *fakeRaycaster) BackendType() raycast.RaycasterBackendType {
	return raycast.BackendTypeImmediate
}

func (f *fakeRaycaster) Release() {}

// hitsBelowOriginX hits with ray i when i < origin.X, so the emitter position sets the hit count.
func hitsBelowOriginX(tag string) func(int, raycast.Command) raycast.Hit {
	return func(i int, cmd raycast.Command) raycast.Hit {
		if i >= int(cmd.Origin.X()) {
			return raycast.Hit{}
		}
		d := float32(i + 1)
		return raycast.Hit{
			Point:    cmd.Origin.Add(cmd.Direction.Mul(d)),
			Normal:   cmd.Direction.Mul(-1),
			Distance: d,
			Target:   &raycast.Target{ID: uint32(i + 1), Tag: tag},
		}
	}
}

type manualClock struct {
	t time.Time
}

func (c *manualClock) now() time.Time {
	return c.t
}

func (c *manualClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type testRig struct {
	r     renderer.Renderer
	rc    *fakeRaycaster
	clock *manualClock
	echo  Echolocator
	impl  *echolocator
}

func newTestRig(t *testing.T, rc *fakeRaycaster, options ...EcholocatorBuilderOption) *testRig {
	t.Helper()
	r := newSoftwareRenderer(t)
	clock := &manualClock{t: time.Unix(1000, 0)}
	options = append([]EcholocatorBuilderOption{WithClock(clock.now), WithSeed(7)}, options...)
	e, err := NewEcholocator(r, rc, options...)
	if err != nil {
		t.Fatalf("unexpected error creating echolocator: %v", err)
	}
	t.Cleanup(func() { _ = e.Release(context.Background()) })
	return &testRig{r: r, rc: rc, clock: clock, echo: e, impl: e.(*echolocator)}
}

func (rig *testRig) mustTrigger(t *testing.T, x float32) WaveInfo {
	t.Helper()
	info, err := rig.echo.Trigger(mgl32.Vec3{x, 0, 0})
	if err != nil {
		t.Fatalf("unexpected trigger error: %v", err)
	}
	return info
}

func (rig *testRig) mustUpdate(t *testing.T) {
	t.Helper()
	if err := rig.echo.Update(); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
}

func (rig *testRig) mustLiveCount(t *testing.T, slot int) int {
	t.Helper()
	n, err := rig.echo.LiveCount(slot)
	if err != nil {
		t.Fatalf("unexpected live count error: %v", err)
	}
	return n
}

func TestSingleWaveLifecycle(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
	rig := newTestRig(t, rc, WithRayCount(10), WithMaxWaves(2))

	info := rig.mustTrigger(t, 6)
	if info.ID != 1 || info.Slot != 0 {
		t.Fatalf("expected wave 1 in slot 0, got %+v", info)
	}
	if rc.flushes != 1 {
		t.Fatalf("expected the raycaster to be flushed once, got %d", rc.flushes)
	}

	rig.mustUpdate(t)
	if rig.echo.PendingCount() != 1 {
		t.Fatalf("expected the unfinished wave to stay queued, %d pending", rig.echo.PendingCount())
	}
	states := rig.echo.SlotStates()
	if !states[0].InFlight || states[1].InFlight || states[1].WaveID != 0 {
		t.Fatalf("expected only slot 0 in flight, got %+v", states)
	}
	if rig.mustLiveCount(t, 0) != 0 {
		t.Fatalf("expected no points before the wave is reaped")
	}

	rc.handles[0].finish()
	rig.mustUpdate(t)
	if rig.echo.PendingCount() != 0 {
		t.Fatalf("expected the queue to drain, %d pending", rig.echo.PendingCount())
	}
	if n := rig.mustLiveCount(t, 0); n != 6 {
		t.Fatalf("expected 6 live points in slot 0, got %d", n)
	}
	stats := rig.echo.Stats()
	if stats.Triggered != 1 || stats.Reaped != 1 || stats.LastReapSlot != 0 || stats.LastReapHits != 6 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if err := rig.echo.Frame(); err != nil {
		t.Fatalf("unexpected frame error: %v", err)
	}
	draws := rig.r.LastFrame()
	if len(draws) != 2 {
		t.Fatalf("expected one draw per slot, got %d", len(draws))
	}
	for i, exp := range []int64{6, 0} {
		d := draws[i]
		if d.PipelineKey != RenderPipelineKey || d.IndexCount != 6 || d.InstanceCount != exp {
			t.Fatalf("slot %d: unexpected draw %+v", i, d)
		}
	}
}

func TestReaperDrainsOnlyTheHead(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
	rig := newTestRig(t, rc, WithRayCount(8), WithMaxWaves(3))

	rig.mustTrigger(t, 2)
	rig.mustTrigger(t, 4)
	rc.handles[1].finish()

	rig.mustUpdate(t)
	if rig.echo.PendingCount() != 2 || rig.echo.Stats().Reaped != 0 {
		t.Fatalf("expected a finished second wave to wait behind the first")
	}

	rc.handles[0].finish()
	rig.mustUpdate(t)
	if rig.echo.PendingCount() != 1 {
		t.Fatalf("expected one wave reaped per update, %d pending", rig.echo.PendingCount())
	}
	rig.mustUpdate(t)
	if rig.echo.PendingCount() != 0 {
		t.Fatalf("expected the queue to drain, %d pending", rig.echo.PendingCount())
	}
}

func TestWavesStayIsolated(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
	rig := newTestRig(t, rc, WithRayCount(8), WithMaxWaves(3))

	for _, x := range []float32{2, 4, 6} {
		rig.mustTrigger(t, x)
	}
	for range 3 {
		rig.mustUpdate(t)
	}

	pool := rig.impl.pool
	before := append([]raycast.Hit(nil), pool.Slot(1).Results...)
	for i := range pool.Slot(0).Commands {
		pool.Slot(0).Commands[i] = raycast.Command{Origin: mgl32.Vec3{99, 99, 99}}
		pool.Slot(0).Results[i] = raycast.Hit{}
	}
	for i, hit := range pool.Slot(1).Results {
		if hit != before[i] {
			t.Fatalf("mutating slot 0 changed slot 1 result %d", i)
		}
	}

	for slot, exp := range []int{2, 4, 6} {
		if n := rig.mustLiveCount(t, slot); n != exp {
			t.Fatalf("slot %d: expected %d live points, got %d", slot, exp, n)
		}
	}
}

func TestSlotReuseReplacesStaleCount(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
	rig := newTestRig(t, rc, WithRayCount(10), WithMaxWaves(1))

	specs := []struct {
		x   float32
		exp int
	}{
		{8, 8},
		{3, 3},
		{0, 0},
		{10, 10},
	}

	for specIndex, spec := range specs {
		rig.mustTrigger(t, spec.x)
		rig.mustUpdate(t)
		if n := rig.mustLiveCount(t, 0); n != spec.exp {
			t.Fatalf("[spec %d] expected %d live points, got %d", specIndex, spec.exp, n)
		}
		if err := rig.echo.Frame(); err != nil {
			t.Fatalf("[spec %d] unexpected frame error: %v", specIndex, err)
		}
		if got := rig.r.LastFrame()[0].InstanceCount; got != int64(spec.exp) {
			t.Fatalf("[spec %d] expected draw of %d instances, got %d", specIndex, spec.exp, got)
		}
	}
}

func TestMissesKeepTheirIndex(t *testing.T) {
	grey := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	rc := &fakeRaycaster{resolve: func(i int, cmd raycast.Command) raycast.Hit {
		if i%2 == 1 {
			return raycast.Hit{}
		}
		return raycast.Hit{Point: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, Distance: 4, Target: &raycast.Target{ID: 9}}
	}}
	rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(1), WithDefaultColor(grey))

	rig.mustTrigger(t, 0)
	rig.mustUpdate(t)

	records := rig.impl.pool.Slot(0).Records
	for i, rec := range records {
		if i%2 == 1 {
			if rec != (GPUHitRecord{Color: grey}) {
				t.Fatalf("record %d: expected an empty default-colored miss, got %+v", i, rec)
			}
			continue
		}
		if rec.HasHit != 1 || rec.TargetID != 9 || rec.Distance != 4 || rec.Normal != [3]float32{0, 1, 0} {
			t.Fatalf("record %d: unexpected hit %+v", i, rec)
		}
	}
	if n := rig.mustLiveCount(t, 0); n != 2 {
		t.Fatalf("expected 2 live points, got %d", n)
	}
}

func TestTagColors(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	grey := mgl32.Vec4{0.2, 0.2, 0.2, 1}
	specs := []struct {
		tag string
		exp mgl32.Vec4
	}{
		{"Enemy", red},
		{"Pickup", grey},
		{"", grey},
	}

	for specIndex, spec := range specs {
		rc := &fakeRaycaster{resolve: hitsBelowOriginX(spec.tag)}
		rig := newTestRig(t, rc, WithRayCount(2), WithMaxWaves(1), WithDefaultColor(grey), WithTagColor("Enemy", red))

		rig.mustTrigger(t, 1)
		rig.mustUpdate(t)

		points, err := rig.r.ReadBuffer(rig.impl.pool.Slot(0).Points, pointHeaderSize, pointRecordSize)
		if err != nil {
			t.Fatalf("[spec %d] unexpected read error: %v", specIndex, err)
		}
		if got := mgl32.Vec4(UnmarshalPointRecord(points).Color); got != spec.exp {
			t.Fatalf("[spec %d] expected color %v for tag %q, got %v", specIndex, spec.exp, spec.tag, got)
		}
	}
}

func TestColorTableOptionIsLayered(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}
	base := NewColorTable(blue, map[string]mgl32.Vec4{"Enemy": blue, "Pickup": blue})
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("Enemy")}
	rig := newTestRig(t, rc, WithRayCount(1), WithMaxWaves(1), WithTagColor("Enemy", red), WithColorTable(base))

	colors := rig.impl.colorTable
	if colors.Resolve(&raycast.Target{Tag: "Enemy"}) != red || colors.Resolve(&raycast.Target{Tag: "Pickup"}) != blue || colors.Default() != blue {
		t.Fatalf("expected tag colors layered over the table")
	}
	if base.Resolve(&raycast.Target{Tag: "Enemy"}) != blue {
		t.Fatalf("expected the caller's table to be left untouched")
	}
}

func TestOverflowPolicies(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
		rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(2))

		rig.mustTrigger(t, 1)
		rig.mustTrigger(t, 2)
		_, err := rig.echo.Trigger(mgl32.Vec3{3, 0, 0})
		if !errors.Is(err, ErrPoolExhausted) {
			t.Fatalf("expected ErrPoolExhausted, got %v", err)
		}
		if len(rc.handles) != 2 || rig.echo.Stats().Rejected != 1 {
			t.Fatalf("expected the rejected trigger to submit nothing")
		}

		// the allocator did not advance, so the next accepted wave still lands in slot 0
		rc.handles[0].finish()
		rig.mustUpdate(t)
		info := rig.mustTrigger(t, 3)
		if info.Slot != 0 || info.ID != 3 {
			t.Fatalf("expected wave 3 in slot 0, got %+v", info)
		}
	})

	t.Run("reuse after reap", func(t *testing.T) {
		for _, policy := range []OverflowPolicy{OverflowReject, OverflowForceComplete, OverflowPanic} {
			rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
			rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(2), WithOverflowPolicy(policy))

			var slots []int
			for _, x := range []float32{1, 2, 3} {
				slots = append(slots, rig.mustTrigger(t, x).Slot)
				rig.mustUpdate(t)
			}
			if slots[0] != 0 || slots[1] != 1 || slots[2] != 0 {
				t.Fatalf("%s: expected slots 0,1,0, got %v", policy, slots)
			}
			if n := rig.mustLiveCount(t, 0); n != 3 {
				t.Fatalf("%s: expected the third wave's 3 points in slot 0, got %d", policy, n)
			}
		}
	})

	t.Run("force complete", func(t *testing.T) {
		rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
		rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(2), WithOverflowPolicy(OverflowForceComplete))

		rig.mustTrigger(t, 1)
		rig.mustTrigger(t, 2)
		info := rig.mustTrigger(t, 3)
		if info.Slot != 0 {
			t.Fatalf("expected the forced trigger to land in slot 0, got %d", info.Slot)
		}
		if rc.handles[0].completes != 1 || rc.handles[1].ready {
			t.Fatalf("expected only the first wave to be forced")
		}
		stats := rig.echo.Stats()
		if stats.Forced != 1 || stats.Reaped != 1 || stats.Pending != 2 {
			t.Fatalf("unexpected stats %+v", stats)
		}
		// slot 0 drew the forced wave's point until the new wave is reaped
		if n := rig.mustLiveCount(t, 0); n != 1 {
			t.Fatalf("expected the forced wave's single point, got %d", n)
		}
	})

	t.Run("panic", func(t *testing.T) {
		rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
		rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(1), WithOverflowPolicy(OverflowPanic))

		rig.mustTrigger(t, 1)
		defer func() {
			if recover() == nil {
				t.Fatalf("expected a panic when reusing a busy slot")
			}
		}()
		_, _ = rig.echo.Trigger(mgl32.Vec3{1, 0, 0})
	})
}

func TestSubmitErrorLeavesAllocator(t *testing.T) {
	submitErr := errors.New("boom")
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), submitErr: submitErr}
	rig := newTestRig(t, rc, WithRayCount(2), WithMaxWaves(2))

	if _, err := rig.echo.Trigger(mgl32.Vec3{}); !errors.Is(err, submitErr) {
		t.Fatalf("expected the raycaster's error, got %v", err)
	}
	rc.submitErr = nil
	if info := rig.mustTrigger(t, 1); info.Slot != 0 || info.ID != 1 {
		t.Fatalf("expected the failed trigger to consume nothing, got %+v", info)
	}
}

func TestStalledWaveIsQuarantined(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
	rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(2), WithStallTimeout(2*time.Second))

	rig.mustTrigger(t, 1)
	rig.clock.advance(time.Second)
	rig.mustTrigger(t, 2)

	rig.clock.advance(1500 * time.Millisecond)
	rig.mustUpdate(t)
	stats := rig.echo.Stats()
	if stats.Stalled != 1 || stats.Quarantined != 1 || stats.Pending != 1 {
		t.Fatalf("expected the first wave abandoned, got %+v", stats)
	}
	if states := rig.echo.SlotStates(); !states[0].Quarantined || states[0].InFlight {
		t.Fatalf("expected slot 0 quarantined, got %+v", states[0])
	}

	// the quarantined slot refuses new waves until its raycast finishes
	if _, err := rig.echo.Trigger(mgl32.Vec3{3, 0, 0}); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted for a quarantined slot, got %v", err)
	}
	rc.handles[0].finish()
	if info := rig.mustTrigger(t, 3); info.Slot != 0 {
		t.Fatalf("expected slot 0 free again, got %+v", info)
	}
	if rig.echo.Stats().Quarantined != 0 {
		t.Fatalf("expected the quarantine to be cleared")
	}
}

func TestTimestamps(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
	rig := newTestRig(t, rc, WithRayCount(2), WithMaxWaves(2), WithPropagationSpeed(2))

	rig.clock.advance(3 * time.Second)
	info := rig.mustTrigger(t, 2)
	if !mgl32.FloatEqual(info.TriggerTime, 3) {
		t.Fatalf("expected trigger time 3s, got %g", info.TriggerTime)
	}
	rig.mustUpdate(t)

	points, err := rig.r.ReadBuffer(rig.impl.pool.Slot(0).Points, pointHeaderSize, 2*pointRecordSize)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	// distances 1 and 2 at 2 units/s
	for i, exp := range []float32{3.5, 4} {
		if got := UnmarshalPointRecord(points[i*pointRecordSize:]).SpawnTime; !mgl32.FloatEqual(got, exp) {
			t.Fatalf("point %d: expected spawn %g, got %g", i, exp, got)
		}
	}
}

func TestReleaseCompletesEveryWave(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
	rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(3))

	for _, x := range []float32{1, 2, 3} {
		rig.mustTrigger(t, x)
	}
	if err := rig.echo.Release(context.Background()); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	for i, h := range rc.handles {
		if !h.ready {
			t.Fatalf("wave %d was left running at release", i+1)
		}
	}
	if live := rig.r.Stats().LiveBuffers; live != 0 {
		t.Fatalf("expected every buffer released, %d live", live)
	}
	if err := rig.echo.Release(context.Background()); err != nil {
		t.Fatalf("expected a second release to be a no-op, got %v", err)
	}
}

func TestReleaseHonoursContext(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX(""), manual: true}
	rig := newTestRig(t, rc, WithRayCount(4), WithMaxWaves(2))

	rig.mustTrigger(t, 1)
	rig.mustTrigger(t, 1)
	rc.handles[0].stuck = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rig.echo.Release(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the context error, got %v", err)
	}
	if !rc.handles[1].ready {
		t.Fatalf("expected the remaining wave to be completed anyway")
	}
	if live := rig.r.Stats().LiveBuffers; live != 0 {
		t.Fatalf("expected every buffer released, %d live", live)
	}
}

func TestReleasedEcholocatorRefusesWork(t *testing.T) {
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
	rig := newTestRig(t, rc, WithRayCount(2), WithMaxWaves(1))
	_ = rig.echo.Release(context.Background())

	specs := []struct {
		descr string
		call  func() error
	}{
		{"trigger", func() error { _, err := rig.echo.Trigger(mgl32.Vec3{}); return err }},
		{"update", rig.echo.Update},
		{"draw", rig.echo.Draw},
		{"frame", rig.echo.Frame},
		{"live count", func() error { _, err := rig.echo.LiveCount(0); return err }},
	}

	for specIndex, spec := range specs {
		if err := spec.call(); !errors.Is(err, ErrReleased) {
			t.Fatalf("[spec %d: %s] expected ErrReleased, got %v", specIndex, spec.descr, err)
		}
	}
}

func TestNewEcholocatorErrors(t *testing.T) {
	r := newSoftwareRenderer(t)
	rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
	specs := []struct {
		descr   string
		r       renderer.Renderer
		rc      raycast.Raycaster
		options []EcholocatorBuilderOption
	}{
		{"no renderer", nil, rc, nil},
		{"no raycaster", r, nil, nil},
		{"zero rays", r, rc, []EcholocatorBuilderOption{WithRayCount(0)}},
		{"zero waves", r, rc, []EcholocatorBuilderOption{WithMaxWaves(0)}},
		{"bad mesh", r, rc, []EcholocatorBuilderOption{WithMesh(&Mesh{Label: "empty"})}},
	}

	for specIndex, spec := range specs {
		if _, err := NewEcholocator(spec.r, spec.rc, spec.options...); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("[spec %d: %s] expected ErrInvalidConfig, got %v", specIndex, spec.descr, err)
		}
	}
}

func TestSeedMakesDirectionsReproducible(t *testing.T) {
	directions := func() []mgl32.Vec3 {
		rc := &fakeRaycaster{resolve: hitsBelowOriginX("")}
		rig := newTestRig(t, rc, WithRayCount(16), WithMaxWaves(1), WithSeed(42))
		rig.mustTrigger(t, 0)
		out := make([]mgl32.Vec3, 0, 16)
		for _, cmd := range rc.handles[0].commands {
			if l := cmd.Direction.Len(); !mgl32.FloatEqualThreshold(l, 1, 1e-4) {
				t.Fatalf("expected unit directions, got length %g", l)
			}
			out = append(out, cmd.Direction)
		}
		return out
	}

	a, b := directions(), directions()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("direction %d differs between runs with the same seed", i)
		}
	}
}
