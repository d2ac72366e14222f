package renderer

// BackendType identifies the GPU backend implementation behind a RenderSystem.
type BackendType int

const (
	// BackendOpenGL selects the OpenGL 4.1 core backend.
	BackendOpenGL BackendType = iota

	// BackendHeadless selects the in-memory render system; nothing reaches a GPU.
	BackendHeadless
)

func (b BackendType) String() string {
	switch b {
	case BackendOpenGL:
		return "opengl"
	case BackendHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware; values above the
// context's GL_MAX_SAMPLES are clamped by the backend.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Hardware-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Hardware-dependent.
	MSAA16x MSAASampleCount = 16
)

// Enabled reports whether the count turns multisampling on.
func (c MSAASampleCount) Enabled() bool {
	return c > MSAAOff
}
