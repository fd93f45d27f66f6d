package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/Carmen-Shannon/echolocation/engine"
	"github.com/Carmen-Shannon/echolocation/engine/camera"
	"github.com/Carmen-Shannon/echolocation/engine/echolocation"
	"github.com/Carmen-Shannon/echolocation/engine/profiler"
	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/window"
	"github.com/urfave/cli"
)

const (
	// Radians per second the emitter and the viewer circle the arena.
	emitterOrbitRate float32 = 0.6
	viewerOrbitRate  float32 = 0.1

	// Distance units per scroll step.
	zoomSensitivity float32 = 1.5
)

// Run the echolocation demo until the duration or tick limit is reached, the window is closed
// or the process is interrupted.
func RunDemo(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := configFromFlags(ctx)
	if err != nil {
		return err
	}
	rendererType, err := parseRendererBackend(ctx.String("backend"))
	if err != nil {
		return err
	}
	raycasterType, err := parseRaycasterBackend(ctx.String("raycaster"))
	if err != nil {
		return err
	}

	width, height := ctx.Int("width"), ctx.Int("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	var win window.Window
	if ctx.Bool("window") {
		if rendererType != renderer.BackendTypeWGPU {
			return errors.New("--window requires the wgpu backend")
		}
		if win, err = window.NewWindow(window.WithTitle("echolocate"), window.WithSize(width, height)); err != nil {
			return err
		}
		defer win.Close()
	}

	rendererOpts := []renderer.RendererBuilderOption{renderer.WithSize(width, height)}
	if win != nil {
		rendererOpts = append(rendererOpts, renderer.WithSurface(win))
	}
	r, err := renderer.NewRenderer(rendererType, rendererOpts...)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rc, err := raycast.NewRaycaster(raycasterType, raycast.WithScene(demoScene()), raycast.WithWorkers(ctx.Int("workers")))
	if err != nil {
		r.Release()
		return fmt.Errorf("create raycaster: %w", err)
	}
	defer rc.Release()

	viewer := camera.NewCameraController(camera.WithRadius(25), camera.WithElevation(0.5))
	cam := camera.NewCamera(
		camera.WithController(viewer),
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithClipPlanes(0.1, 500),
	)

	echo, err := echolocation.NewEcholocator(r, rc, echolocation.WithConfig(cfg), echolocation.WithCamera(cam))
	if err != nil {
		r.Release()
		return err
	}

	d := newDemo(echo, cam, float32(ctx.Duration("interval").Seconds()))
	if win != nil {
		win.SetKeyDownCallback(d.keyDown)
		win.SetScrollCallback(func(delta float32) {
			viewer.Zoom(delta * zoomSensitivity)
		})
	}

	engineOpts := []engine.EngineBuilderOption{
		engine.WithRenderer(r),
		engine.WithEffect(echo),
		engine.WithTickRate(ctx.Float64("tick-rate")),
		engine.WithTickCallback(d.tick),
		engine.WithMaxTicks(ctx.Uint64("ticks")),
		engine.WithProfiling(ctx.Bool("profile"), profiler.WithInterval(ctx.Duration("profile-interval"))),
	}
	if win != nil {
		engineOpts = append(engineOpts, engine.WithWindow(win))
	}
	eng := engine.NewEngine(engineOpts...)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if limit := ctx.Duration("duration"); limit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, limit)
		defer cancel()
	}

	logger.Noticef("running %s renderer with %s raycaster: %d rays, %d waves, %s overflow",
		rendererType, raycasterType, cfg.RayCount, cfg.MaxWaves, cfg.OverflowPolicy)
	runErr := eng.Run(runCtx)

	displayWaveStats(echo.Stats(), echo.SlotStates(), eng.Ticks(), d.dropped)
	return runErr
}

// demo drives the emitter around the arena and fires a wave every interval.
type demo struct {
	echo    echolocation.Echolocator
	camera  camera.Camera
	emitter camera.CameraController

	interval     float32
	sinceTrigger float32
	requested    bool
	paused       bool
	dropped      int
}

func newDemo(echo echolocation.Echolocator, cam camera.Camera, interval float32) *demo {
	return &demo{
		echo:     echo,
		camera:   cam,
		emitter:  camera.NewCameraController(camera.WithRadius(8), camera.WithElevation(0.15)),
		interval: interval,
		// Fire on the first tick.
		sinceTrigger: interval,
	}
}

// keyDown maps space to an extra wave, W and S to zoom and P to pausing the automatic waves.
func (d *demo) keyDown(keyCode int) {
	switch keyCode {
	case common.KeySpace:
		d.requested = true
	case common.KeyP:
		d.paused = !d.paused
	case common.KeyW, common.KeyS:
		ctrl := d.camera.Controller()
		if ctrl == nil {
			return
		}
		step := zoomSensitivity
		if keyCode == common.KeyS {
			step = -step
		}
		ctrl.Zoom(step)
	}
}

func (d *demo) tick(dt float32) error {
	d.emitter.Orbit(dt*emitterOrbitRate, 0)
	if ctrl := d.camera.Controller(); ctrl != nil {
		ctrl.Orbit(dt*viewerOrbitRate, 0)
	}
	d.camera.Update()

	d.sinceTrigger += dt
	if !d.requested && (d.paused || d.sinceTrigger < d.interval) {
		return nil
	}
	d.requested = false
	d.sinceTrigger = 0

	info, err := d.echo.Trigger(d.emitter.Position())
	switch {
	case errors.Is(err, echolocation.ErrPoolExhausted):
		d.dropped++
		logger.Debugf("trigger dropped: %v", err)
		return nil
	case err != nil:
		return err
	}
	logger.Debugf("wave %d fired from %v into slot %d", info.ID, d.emitter.Position(), info.Slot)
	return nil
}

func configFromFlags(ctx *cli.Context) (echolocation.Config, error) {
	policy, ok := echolocation.ParseOverflowPolicy(ctx.String("overflow"))
	if !ok {
		return echolocation.Config{}, fmt.Errorf("unknown overflow policy %q (expected reject, force or panic)", ctx.String("overflow"))
	}

	cfg := echolocation.DefaultConfig()
	cfg.RayCount = ctx.Int("rays")
	cfg.MaxWaves = ctx.Int("waves")
	cfg.MaxDistance = float32(ctx.Float64("max-distance"))
	cfg.PointLifetime = ctx.Duration("lifetime")
	cfg.PropagationSpeed = float32(ctx.Float64("speed"))
	cfg.PointSize = float32(ctx.Float64("point-size"))
	cfg.OverflowPolicy = policy
	cfg.StallTimeout = ctx.Duration("stall-timeout")
	cfg.Seed = ctx.Uint64("seed")
	cfg.TagColors = demoTagColors

	if err := cfg.Validate(); err != nil {
		return echolocation.Config{}, err
	}
	return cfg, nil
}

func parseRendererBackend(name string) (renderer.RendererBackendType, error) {
	for _, t := range []renderer.RendererBackendType{renderer.BackendTypeSoftware, renderer.BackendTypeWGPU} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown renderer backend %q (expected software or wgpu)", name)
}

func parseRaycasterBackend(name string) (raycast.RaycasterBackendType, error) {
	for _, t := range []raycast.RaycasterBackendType{raycast.BackendTypeWorkerPool, raycast.BackendTypeImmediate} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown raycaster backend %q", name)
}
