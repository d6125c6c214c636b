package render

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/prism/pkg/tracer"
)

// WritePPM writes img as a binary (P6) portable pixmap with 8 bits per
// channel.
func WritePPM(w io.Writer, img *tracer.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	for _, c := range img.Pix {
		px := c.RGBA()
		if _, err := bw.Write([]byte{px.R, px.G, px.B}); err != nil {
			return fmt.Errorf("write ppm pixels: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}
	return nil
}

// ToRGBA converts a traced image to a standard Go image.
func ToRGBA(img *tracer.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := range img.Height {
		for x := range img.Width {
			out.SetRGBA(x, y, img.At(x, y).RGBA())
		}
	}
	return out
}

// WritePNG writes img as a PNG.
func WritePNG(w io.Writer, img *tracer.Image) error {
	if err := png.Encode(w, ToRGBA(img)); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SaveImage writes img to path. The format is chosen by extension: .png
// for PNG, anything else for PPM.
func SaveImage(path string, img *tracer.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("save image: %w", cerr)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		return WritePNG(f, img)
	}
	return WritePPM(f, img)
}
