package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureImageDecode(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{B: 255, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img := &TextureImage{Name: "diffuse", Data: buf.Bytes()}
	require.NoError(t, img.Decode())
	assert.True(t, img.Decoded())
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Len(t, img.Pixels, 8)
	assert.Equal(t, byte(255), img.Pixels[0])
}

func TestTextureImageDecodeErrors(t *testing.T) {
	var nilImg *TextureImage
	assert.Error(t, nilImg.Decode())
	assert.Error(t, (&TextureImage{Name: "empty"}).Decode())
	assert.Error(t, (&TextureImage{Name: "bad", Data: []byte("not an image")}).Decode())
}

func TestSolidTextureImage(t *testing.T) {
	img := SolidTextureImage("white", color.RGBA{255, 255, 255, 255})
	assert.True(t, img.Decoded())
	assert.NoError(t, img.Decode())
}
