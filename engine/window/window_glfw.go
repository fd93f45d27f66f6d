package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	handle *glfw.Window
}

// openGLFWWindow creates the GLFW window and wires its callbacks to w.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func openGLFWWindow(w *window) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU owns the graphics API, so no OpenGL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	maxW, maxH := glfw.DontCare, glfw.DontCare
	if w.maxW > 0 {
		maxW = w.maxW
	}
	if w.maxH > 0 {
		maxH = w.maxH
	}
	handle.SetSizeLimits(w.minW, w.minH, maxW, maxH)

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		if int(key) == common.KeyEscape {
			handle.SetShouldClose(true)
			return
		}
		if w.onKeyDown != nil {
			w.onKeyDown(int(key))
		}
	})

	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	// Framebuffer size, not window size: they differ on high-DPI displays and the surface needs pixels.
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.width, w.height = handle.GetFramebufferSize()

	w.platform = &glfwWindow{handle: handle}
	return nil
}

// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.handle)
}

func (g *glfwWindow) poll() {
	glfw.PollEvents()
}

func (g *glfwWindow) shouldClose() bool {
	return g.handle.ShouldClose()
}

func (g *glfwWindow) destroy() {
	g.handle.Destroy()
	glfw.Terminate()
}
