package window

// WindowBuilderOption is a functional option applied to a window during construction via NewWindow.
type WindowBuilderOption func(w *window)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *window) {
		w.title = title
	}
}

// WithSize sets the initial client area size. The framebuffer may be larger on high-DPI displays.
//
// Parameters:
//   - width: width in screen coordinates
//   - height: height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *window) {
		w.width, w.height = width, height
	}
}

// WithSizeLimits bounds interactive resizing. A zero maximum leaves that axis unbounded.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed size
//   - maxWidth, maxHeight: the largest allowed size, 0 for no limit
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *window) {
		w.minW, w.minH = minWidth, minHeight
		w.maxW, w.maxH = maxWidth, maxHeight
	}
}
