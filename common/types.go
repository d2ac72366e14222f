// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// TextureImage holds the source and decoded RGBA pixels of an image bound to a material pass.
// Either Data (encoded PNG/JPEG bytes) or Path must be set before Decode is called.
type TextureImage struct {
	// Name is an identifier for this image (e.g., "diffuse", "opacity").
	Name string

	// Path is the file path for images stored on disk.
	Path string

	// Data contains encoded image bytes for in-memory images.
	Data []byte

	// Pixels is the decoded RGBA payload, 4 bytes per pixel, row-major.
	Pixels []byte

	// Width is the image width in pixels (populated after Decode).
	Width int

	// Height is the image height in pixels (populated after Decode).
	Height int
}

// SolidTextureImage builds an already-decoded 1x1 image of the given colour.
//
// Parameters:
//   - name: identifier of the image
//   - c: the pixel colour
//
// Returns:
//   - *TextureImage: the decoded image
func SolidTextureImage(name string, c color.RGBA) *TextureImage {
	return &TextureImage{
		Name:   name,
		Pixels: []byte{c.R, c.G, c.B, c.A},
		Width:  1,
		Height: 1,
	}
}

// Decoded reports whether the pixel payload is ready for upload.
func (t *TextureImage) Decoded() bool {
	return t != nil && len(t.Pixels) > 0 && t.Width > 0 && t.Height > 0
}

// Decode decodes the image to raw RGBA pixel data.
// Uses either the in-memory Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats. Decoding an already decoded image is a no-op.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - error: error if decoding fails
func (t *TextureImage) Decode() error {
	if t == nil {
		return fmt.Errorf("texture image is nil")
	}
	if t.Decoded() {
		return nil
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return fmt.Errorf("failed to decode image %s: %w", t.Name, err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return fmt.Errorf("failed to open image file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return fmt.Errorf("failed to decode image file %s: %w", t.Path, err)
		}
	} else {
		return fmt.Errorf("image %s has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	t.Pixels = rgba.Pix
	t.Width = bounds.Dx()
	t.Height = bounds.Dy()
	return nil
}
