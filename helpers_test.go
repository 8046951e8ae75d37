package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"briecrop/cropper"
	"briecrop/cropper/croppertest"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// writeTestImage writes a w x h PNG to dir/name and returns its path.
func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, imaging.Save(gradient(w, h), path))
	return path
}

// writeTestJPEG writes a w x h JPEG tagged with an EXIF orientation.
func writeTestJPEG(t *testing.T, dir, name string, w, h int, o cropper.Orientation) string {
	t.Helper()
	data, err := croppertest.JPEG(gradient(w, h), uint16(o))
	require.NoError(t, err)
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	return img
}
