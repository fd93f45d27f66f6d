package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the optional on-screen presentation target for the echolocation demo.
// All methods must be called from the goroutine that created the window; NewWindow locks it to its OS thread.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key presses and repeats. Escape always closes the window.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// SurfaceDescriptor returns the platform surface descriptor for the WGPU renderer.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ProcessEvents polls pending window events without blocking and runs their callbacks.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	ProcessEvents() bool

	// ShouldClose reports whether the user or Close has asked the window to close.
	ShouldClose() bool

	// Close destroys the window. Safe to call more than once.
	//
	// Returns:
	//   - error: if the window was never opened
	Close() error

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

type window struct {
	title      string
	width      int
	height     int
	minW, minH int
	maxW, maxH int
	platform   *glfwWindow
	onResize   func(width, height int)
	onKeyDown  func(keyCode int)
	onScroll   func(delta float32)
}

var _ Window = &window{}

// NewWindow opens a window with the given options. The calling goroutine is locked to its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: if GLFW cannot be initialized or the window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &window{
		title:  "echolocate",
		width:  1280,
		height: 720,
		minW:   320,
		minH:   200,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", w.width, w.height)
	}
	if err := openGLFWWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *window) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *window) SetKeyDownCallback(callback func(keyCode int)) {
	w.onKeyDown = callback
}

func (w *window) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *window) ProcessEvents() bool {
	if w.platform == nil {
		return false
	}
	w.platform.poll()
	return !w.ShouldClose()
}

func (w *window) ShouldClose() bool {
	return w.platform == nil || w.platform.shouldClose()
}

func (w *window) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window %q is not open", w.title)
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *window) Width() int {
	return w.width
}

func (w *window) Height() int {
	return w.height
}
