package testutils

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// WriteJPEG encodes a w x h gradient as a real JPEG at path
func WriteJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
}

// CreateShoot writes one JPEG per name into dir, plus an ARW sidecar for
// each name listed in raws. It returns the JPEG paths in the order given.
func CreateShoot(t *testing.T, dir string, names []string, raws ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name+".JPG")
		WriteJPEG(t, p, 64, 48)
		paths = append(paths, p)
	}
	for _, name := range raws {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".ARW"), []byte("raw"), 0644))
	}
	return paths
}

// AssertExists fails the test unless path exists
func AssertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", path)
}

// AssertMissing fails the test if path exists
func AssertMissing(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "expected %s to be gone", path)
}
