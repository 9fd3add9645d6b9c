// Package preview renders quick-look images of decoded arrays. It is a
// diagnostic aid, not a reconstruction: the magnitude of the central plane
// is normalized to the full gray range and written as a PNG.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"

	"github.com/kspace-tools/kspace/internal/dims"
)

// Options tune RenderSlice.
type Options struct {
	// Width resizes the output to this width (preserving aspect ratio)
	// when non-zero.
	Width int
}

// RenderSlice renders the magnitude of the axis-0 x axis-1 plane through
// the middle of every remaining axis.
func RenderSlice(data []complex64, d dims.Dim, opts Options) (image.Image, error) {
	if d.Numel() != len(data) {
		return nil, fmt.Errorf("preview: buffer has %d samples but dimensions describe %d", len(data), d.Numel())
	}
	w, h := d.Size(0), d.Size(1)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("preview: empty plane %dx%d", w, h)
	}

	// Magnitude of the central plane.
	idx := make([]int, dims.MaxAxes)
	for ax := 2; ax < dims.MaxAxes; ax++ {
		idx[ax] = d.Size(ax) / 2
	}
	plane := make([]float64, w*h)
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for y := 0; y < h; y++ {
		idx[1] = y
		for x := 0; x < w; x++ {
			idx[0] = x
			v := data[d.Addr(idx)]
			mag := math.Hypot(float64(real(v)), float64(imag(v)))
			plane[y*w+x] = mag
			if mag < minVal {
				minVal = mag
			}
			if mag > maxVal {
				maxVal = mag
			}
		}
	}

	scale := 0.0
	if maxVal > minVal {
		scale = 255 / (maxVal - minVal)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((plane[y*w+x] - minVal) * scale)})
		}
	}

	if opts.Width > 0 && opts.Width != w {
		return imaging.Resize(img, opts.Width, 0, imaging.Lanczos), nil
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
