package opengl

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// texture is an RGBA8 2D texture with mipmaps.
type texture struct {
	res *buffer.Resource
}

var _ material.Texture = &texture{}

func newTexture(img *common.TextureImage) (*texture, error) {
	if !img.Decoded() {
		return nil, fmt.Errorf("failed to create texture %s: image is not decoded", img.Name)
	}
	res := buffer.NewResource(buffer.KindTexture, buffer.Capabilities{
		Create: func() (uint32, error) {
			var id uint32
			gl.GenTextures(1, &id)
			if id == 0 {
				return 0, fmt.Errorf("glGenTextures returned 0 (GL error %d)", gl.GetError())
			}
			return id, nil
		},
		Destroy: func(id uint32) { gl.DeleteTextures(1, &id) },
		Bind:    func(id uint32) { gl.BindTexture(gl.TEXTURE_2D, id) },
		Unbind:  func(uint32) { gl.BindTexture(gl.TEXTURE_2D, 0) },
	})
	if err := res.Create(); err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", img.Name, err)
	}

	_ = res.Bind()
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(img.Width), int32(img.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	res.Unbind()
	return &texture{res: res}, nil
}

func (t *texture) Bind(unit uint32) {
	gl.ActiveTexture(TextureUnit(unit))
	_ = t.res.Bind()
}

func (t *texture) Unbind(unit uint32) {
	gl.ActiveTexture(TextureUnit(unit))
	t.res.Unbind()
}

func (t *texture) Release() {
	t.res.Destroy()
}
