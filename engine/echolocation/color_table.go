package echolocation

import (
	"maps"

	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// White is the default point color.
var White = mgl32.Vec4{1, 1, 1, 1}

// ColorTable maps target classification tags to point colors.
// Targets without a registered tag, and misses, get the default color.
type ColorTable struct {
	defaultColor mgl32.Vec4
	entries      map[string]mgl32.Vec4
}

// NewColorTable creates a ColorTable. The entries map is copied.
//
// Parameters:
//   - defaultColor: the color for misses and unmapped tags
//   - entries: tag to color mappings, may be nil
//
// Returns:
//   - *ColorTable: the color table
func NewColorTable(defaultColor mgl32.Vec4, entries map[string]mgl32.Vec4) *ColorTable {
	t := &ColorTable{
		defaultColor: defaultColor,
		entries:      make(map[string]mgl32.Vec4, len(entries)),
	}
	maps.Copy(t.entries, entries)
	return t
}

// Resolve returns the color for a hit target.
//
// Parameters:
//   - target: the hit target, nil for a miss
//
// Returns:
//   - mgl32.Vec4: the mapped color or the default color
func (t *ColorTable) Resolve(target *raycast.Target) mgl32.Vec4 {
	if target == nil {
		return t.defaultColor
	}
	if c, ok := t.entries[target.Tag]; ok {
		return c
	}
	return t.defaultColor
}

// Default returns the fallback color.
func (t *ColorTable) Default() mgl32.Vec4 {
	return t.defaultColor
}

func (t *ColorTable) set(tag string, color mgl32.Vec4) {
	t.entries[tag] = color
}
