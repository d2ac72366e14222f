package material

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Texture is a GPU texture bound to a sampler unit while a pass is active.
type Texture interface {
	// Bind activates the texture on the given unit.
	Bind(unit uint32)

	// Unbind clears the given unit.
	Unbind(unit uint32)

	// Release deletes the GPU texture.
	Release()
}

// TextureFactory uploads decoded images to the GPU.
type TextureFactory interface {
	CreateTexture(img *common.TextureImage) (Texture, error)
}

// TextureUnit pairs a channel's source image with its GPU texture once uploaded.
type TextureUnit struct {
	Channel Channel
	Image   *common.TextureImage
	Texture Texture
}
