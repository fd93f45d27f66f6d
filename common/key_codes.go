package common

// Key codes delivered to window key callbacks. Printable keys use their ASCII value, the rest
// follow GLFW (https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key).
const (
	KeySpace = 32
	KeyW     = 87
	KeyS     = 83
	KeyP     = 80

	KeyEscape = 256
)
