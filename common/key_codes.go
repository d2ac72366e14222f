package common

// Key codes delivered by the window key callbacks. Values match GLFW, which
// uses ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyF     = 70 // toggles fog in oxy-view
	KeyP     = 80 // switches animation clips in oxy-view
	KeyR     = 82 // reloads shaders in oxy-view
	KeySpace = 32
	KeyEsc   = 256

	KeyRight = 262
	KeyLeft  = 263
	KeyDown  = 264
	KeyUp    = 265
)
