package cmd

import (
	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// Tags used by the demo scene.
const (
	tagGround = "Ground"
	tagEnemy  = "Enemy"
	tagPickup = "Pickup"
)

// demoTagColors colors every tagged demo target. The wall is untagged and keeps the default color.
var demoTagColors = map[string]mgl32.Vec4{
	tagGround: {0.35, 0.45, 0.55, 1},
	tagEnemy:  {1, 0.15, 0.1, 1},
	tagPickup: {0.2, 1, 0.35, 1},
}

// demoScene builds a small arena: a ground plane, an enemy box, a pickup sphere and a wall behind them.
func demoScene() raycast.Scene {
	return raycast.NewScene(
		raycast.NewPlane(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, &raycast.Target{ID: 1, Tag: tagGround}),
		raycast.NewBox(mgl32.Vec3{4, 0, -1}, mgl32.Vec3{6, 2, 1}, &raycast.Target{ID: 2, Tag: tagEnemy}),
		raycast.NewSphere(mgl32.Vec3{-5, 1, 2}, 1, &raycast.Target{ID: 3, Tag: tagPickup}),
		raycast.NewBox(mgl32.Vec3{-12, 0, -12}, mgl32.Vec3{12, 4, -11}, &raycast.Target{ID: 4}),
	)
}
