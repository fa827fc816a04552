package testutil

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/derhami/Converterz/pkg/converter/codec"
)

// CreateDummyFile creates a file with the given content, creating parent directories.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at the given path, creating parents if needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	err := os.MkdirAll(filepath.Clean(path), 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", path)
}

// SampleImage returns a deterministic w x h gradient.
func SampleImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 96, A: 255})
		}
	}
	return img
}

// WriteSampleImage encodes a w x h gradient at path in format ("png", "jpeg", "webp" or
// "gif") and returns path.
func WriteSampleImage(t *testing.T, path, format string, w, h int) string {
	t.Helper()
	CreateDummyDir(t, filepath.Dir(path))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	img := SampleImage(w, h)
	if format == "gif" {
		require.NoError(t, gif.Encode(f, img, nil))
		return path
	}
	enc, err := codec.For(format)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(f, img, 90))
	return path
}

// DecodeFile decodes the image at path and returns it with its detected format.
func DecodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := codec.Decode(f)
	require.NoError(t, err, "output %s should decode", path)
	return img, format
}
