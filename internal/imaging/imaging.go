// Package imaging decodes JPEGs into screen-sized previews.
package imaging

import (
	"image"
	"image/jpeg"
	"os"

	"cull/internal/errors"
	"cull/internal/scan"

	"github.com/nfnt/resize"
)

// Fit returns the largest size with w:h's aspect ratio that fits within
// maxW x maxH. Images already inside the bounds keep their size, and each
// side is at least 1 pixel.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}

	// Compare w/maxW against h/maxH without floating point
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}

// Decode reads the JPEG at path, downscales it to fit within maxW x maxH
// with Lanczos resampling and rotates it upright according to orientation
// (EXIF values 1-8; anything else leaves the pixels as stored). All
// failures are reported as a DecodeError naming path.
func Decode(path string, maxW, maxH, orientation int) (image.Image, error) {
	mime, err := scan.Sniff(path)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}
	if mime != scan.MimeJPEG {
		return nil, errors.NewDecodeError(path, errors.Newf("unsupported content type %s", mime))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, errors.NewDecodeError(path, err)
	}

	// Quarter turns swap the displayed axes
	if orientation >= 5 && orientation <= 8 {
		maxW, maxH = maxH, maxW
	}

	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), maxW, maxH)
	if w != b.Dx() || h != b.Dy() {
		img = resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	}

	return Orient(img, orientation), nil
}
