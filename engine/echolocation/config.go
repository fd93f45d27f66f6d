package echolocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds every tunable of an Echolocator. NewEcholocator starts from DefaultConfig
// and applies its builder options on top.
type Config struct {
	RayCount         int
	MaxWaves         int
	MaxDistance      float32
	PointLifetime    time.Duration
	PropagationSpeed float32
	PointSize        float32

	DefaultColor mgl32.Vec4
	TagColors    map[string]mgl32.Vec4

	OverflowPolicy OverflowPolicy
	StallTimeout   time.Duration
	Seed           uint64
}

// DefaultConfig returns the settings used when no options are given.
//
// Returns:
//   - Config: 50000 rays, 6 waves, 100 units range, 5 s lifetime, 40 units/s, white points
func DefaultConfig() Config {
	return Config{
		RayCount:         50000,
		MaxWaves:         6,
		MaxDistance:      100,
		PointLifetime:    5 * time.Second,
		PropagationSpeed: 40,
		PointSize:        0.05,
		DefaultColor:     White,
		OverflowPolicy:   OverflowReject,
	}
}

// Validate checks every field and reports all problems at once.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig for each invalid field
func (c Config) Validate() error {
	var errs []error
	if c.RayCount <= 0 {
		errs = append(errs, fmt.Errorf("%w: ray count must be positive, got %d", ErrInvalidConfig, c.RayCount))
	}
	if c.MaxWaves <= 0 {
		errs = append(errs, fmt.Errorf("%w: max waves must be positive, got %d", ErrInvalidConfig, c.MaxWaves))
	}
	if c.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("%w: max distance must be positive, got %g", ErrInvalidConfig, c.MaxDistance))
	}
	if c.PointLifetime <= 0 {
		errs = append(errs, fmt.Errorf("%w: point lifetime must be positive, got %s", ErrInvalidConfig, c.PointLifetime))
	}
	if c.PropagationSpeed < 0 {
		errs = append(errs, fmt.Errorf("%w: propagation speed must not be negative, got %g", ErrInvalidConfig, c.PropagationSpeed))
	}
	if c.PointSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: point size must be positive, got %g", ErrInvalidConfig, c.PointSize))
	}
	if c.StallTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: stall timeout must not be negative, got %s", ErrInvalidConfig, c.StallTimeout))
	}
	switch c.OverflowPolicy {
	case OverflowReject, OverflowForceComplete, OverflowPanic:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown overflow policy %d", ErrInvalidConfig, c.OverflowPolicy))
	}
	return errors.Join(errs...)
}
