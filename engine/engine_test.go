package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/renderer"
)

type recordingEffect struct {
	name      string
	calls     *[]string
	updateErr error
	drawPanic bool
	releases  int
}

func (fx *recordingEffect) Update() error {
	*fx.calls = append(*fx.calls, fx.name+".update")
	return fx.updateErr
}

func (fx *recordingEffect) Draw() error {
	if fx.drawPanic {
		panic(fx.name + " exploded")
	}
	*fx.calls = append(*fx.calls, fx.name+".draw")
	return nil
}

func (fx *recordingEffect) Release(ctx context.Context) error {
	fx.releases++
	*fx.calls = append(*fx.calls, fx.name+".release")
	return nil
}

func newTestRenderer(t *testing.T) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware)
	if err != nil {
		t.Fatalf("unexpected error creating renderer: %v", err)
	}
	return r
}

func runWithTimeout(t *testing.T, e Engine) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Run(ctx)
}

func TestTickOrder(t *testing.T) {
	var calls []string
	a := &recordingEffect{name: "a", calls: &calls}
	b := &recordingEffect{name: "b", calls: &calls}
	r := newTestRenderer(t)

	e := NewEngine(
		WithRenderer(r),
		WithTickRate(1000),
		WithMaxTicks(2),
		WithEffect(a),
		WithEffect(b),
		WithTickCallback(func(float32) error {
			calls = append(calls, "callback")
			return nil
		}),
	)
	if err := runWithTimeout(t, e); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	exp := []string{
		"a.update", "b.update", "callback", "a.draw", "b.draw",
		"a.update", "b.update", "callback", "a.draw", "b.draw",
		"b.release", "a.release",
	}
	if strings.Join(calls, ",") != strings.Join(exp, ",") {
		t.Fatalf("expected calls\n%v\ngot\n%v", exp, calls)
	}
	if e.Ticks() != 2 {
		t.Fatalf("expected 2 ticks, got %d", e.Ticks())
	}
	if frames := r.Stats().Frames; frames != 2 {
		t.Fatalf("expected 2 presented frames, got %d", frames)
	}
}

func TestRunStops(t *testing.T) {
	specs := []struct {
		descr    string
		setup    func(e Engine, cancel context.CancelFunc) func(float32) error
		expErr   string
		expTicks uint64
	}{
		{"quit from callback", func(e Engine, _ context.CancelFunc) func(float32) error {
			return func(float32) error {
				if e.Ticks() == 2 {
					e.Quit()
				}
				return nil
			}
		}, "", 3},
		{"context cancelled", func(e Engine, cancel context.CancelFunc) func(float32) error {
			return func(float32) error {
				cancel()
				return nil
			}
		}, "", 1},
		{"callback error", func(Engine, context.CancelFunc) func(float32) error {
			return func(float32) error { return errors.New("bad logic") }
		}, "tick 1: bad logic", 0},
	}

	for specIndex, spec := range specs {
		var calls []string
		fx := &recordingEffect{name: "fx", calls: &calls}
		e := NewEngine(WithRenderer(newTestRenderer(t)), WithTickRate(1000), WithMaxTicks(100), WithEffect(fx))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		e.SetTickCallback(spec.setup(e, cancel))

		err := e.Run(ctx)
		cancel()
		if spec.expErr == "" && err != nil {
			t.Fatalf("[spec %d: %s] unexpected error: %v", specIndex, spec.descr, err)
		}
		if spec.expErr != "" && (err == nil || !strings.Contains(err.Error(), spec.expErr)) {
			t.Fatalf("[spec %d: %s] expected error containing %q, got %v", specIndex, spec.descr, spec.expErr, err)
		}
		if e.Ticks() != spec.expTicks {
			t.Fatalf("[spec %d: %s] expected %d ticks, got %d", specIndex, spec.descr, spec.expTicks, e.Ticks())
		}
		if fx.releases != 1 {
			t.Fatalf("[spec %d: %s] expected the effect released once, got %d", specIndex, spec.descr, fx.releases)
		}
	}
}

func TestPanicIsRecovered(t *testing.T) {
	var calls []string
	fx := &recordingEffect{name: "fx", calls: &calls, drawPanic: true}
	e := NewEngine(WithRenderer(newTestRenderer(t)), WithTickRate(1000), WithEffect(fx))

	err := runWithTimeout(t, e)
	if err == nil || !strings.Contains(err.Error(), "panic: fx exploded") {
		t.Fatalf("expected the recovered panic, got %v", err)
	}
	if fx.releases != 1 {
		t.Fatalf("expected the effect released after a panic")
	}
}

func TestUpdateErrorStopsEngine(t *testing.T) {
	var calls []string
	updateErr := errors.New("gpu lost")
	fx := &recordingEffect{name: "fx", calls: &calls, updateErr: updateErr}
	e := NewEngine(WithRenderer(newTestRenderer(t)), WithTickRate(1000), WithEffect(fx))

	if err := runWithTimeout(t, e); !errors.Is(err, updateErr) {
		t.Fatalf("expected the update error, got %v", err)
	}
	for _, c := range calls {
		if c == "fx.draw" {
			t.Fatalf("expected no draw after a failed update")
		}
	}
}

func TestRunRequiresRenderer(t *testing.T) {
	if err := NewEngine().Run(context.Background()); err == nil {
		t.Fatalf("expected an error without a renderer")
	}
}
