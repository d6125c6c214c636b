package tracer

import "github.com/taigrr/prism/pkg/rgb"

// Image is a row-major buffer of clamped colors with (0, 0) at the
// top-left corner.
type Image struct {
	Width, Height int
	Pix           []rgb.Color
}

// NewImage allocates a black image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]rgb.Color, width*height),
	}
}

// At returns the color at (x, y). Out-of-range coordinates return black.
func (img *Image) At(x, y int) rgb.Color {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return rgb.Black
	}
	return img.Pix[y*img.Width+x]
}

// Set clamps c and stores it at (x, y). Out-of-range coordinates are
// ignored.
func (img *Image) Set(x, y int, c rgb.Color) {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return
	}
	img.Pix[y*img.Width+x] = c.Clamp()
}
