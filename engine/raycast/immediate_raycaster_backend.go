package raycast

type immediateBackend struct {
	scene Scene
}

var _ raycasterBackend = &immediateBackend{}

func (b *immediateBackend) run(h *batchHandle) {
	evaluateRange(b.scene, h, 0, len(h.commands))
	h.finish()
}
