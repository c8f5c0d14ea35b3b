package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"cull/internal/errors"
	"cull/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{"landscape into screen", 6000, 4000, 1920, 930, 1395, 930},
		{"portrait into screen", 4000, 6000, 1920, 930, 620, 930},
		{"wide limited by width", 4000, 1000, 1920, 930, 1920, 480},
		{"already fits", 800, 600, 1920, 930, 800, 600},
		{"never upscales", 10, 10, 1920, 930, 10, 10},
		{"exact bounds", 1920, 930, 1920, 930, 1920, 930},
		{"degenerate sliver", 10000, 1, 100, 100, 100, 1},
		{"unbounded", 500, 400, 0, 0, 500, 400},
		{"empty image", 0, 10, 100, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w, "width")
			assert.Equal(t, tt.wantH, h, "height")
			assert.LessOrEqual(t, w, max(tt.w, 0))
		})
	}
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DSC0001.JPG")
	testutils.WriteJPEG(t, path, 200, 100)

	t.Run("downscale", func(t *testing.T) {
		img, err := Decode(path, 50, 50, 1)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 50, 25), img.Bounds())
	})

	t.Run("no upscale", func(t *testing.T) {
		img, err := Decode(path, 1000, 1000, 0)
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 100, img.Bounds().Dy())
	})

	t.Run("quarter turn fits rotated bounds", func(t *testing.T) {
		img, err := Decode(path, 50, 50, 6)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 25, 50), img.Bounds())
	})

	t.Run("not a jpeg", func(t *testing.T) {
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"fake.JPG": "definitely text"})
		_, err := Decode(filepath.Join(dir, "fake.JPG"), 50, 50, 1)
		require.Error(t, err)
		assert.True(t, errors.IsDecodeFailed(err))
		assert.Contains(t, err.Error(), "fake.JPG")
		assert.Contains(t, err.Error(), "generated an exception")
	})

	t.Run("truncated jpeg", func(t *testing.T) {
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"cut.JPG": "\xff\xd8\xff\xe0\x00\x10JFIF\x00"})
		_, err := Decode(filepath.Join(dir, "cut.JPG"), 50, 50, 1)
		require.Error(t, err)
		assert.True(t, errors.IsDecodeFailed(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Decode(filepath.Join(dir, "gone.JPG"), 50, 50, 1)
		require.Error(t, err)
		assert.True(t, errors.IsDecodeFailed(err))
	})
}

func TestOrient(t *testing.T) {
	// 3x2 source with a marked top-left pixel
	red := color.RGBA{R: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(0, 0, red)

	tests := []struct {
		orientation int
		size        image.Point
		redAt       image.Point
	}{
		{1, image.Pt(3, 2), image.Pt(0, 0)},
		{2, image.Pt(3, 2), image.Pt(2, 0)},
		{3, image.Pt(3, 2), image.Pt(2, 1)},
		{4, image.Pt(3, 2), image.Pt(0, 1)},
		{5, image.Pt(2, 3), image.Pt(0, 0)},
		{6, image.Pt(2, 3), image.Pt(1, 0)},
		{7, image.Pt(2, 3), image.Pt(1, 2)},
		{8, image.Pt(2, 3), image.Pt(0, 2)},
		{9, image.Pt(3, 2), image.Pt(0, 0)},
	}

	for _, tt := range tests {
		got := Orient(src, tt.orientation)
		assert.Equal(t, tt.size, got.Bounds().Size(), "orientation %d size", tt.orientation)

		r, g, b, a := got.At(tt.redAt.X, tt.redAt.Y).RGBA()
		assert.Equal(t, [4]uint32{0xffff, 0, 0, 0xffff}, [4]uint32{r, g, b, a}, "orientation %d", tt.orientation)
	}
}
