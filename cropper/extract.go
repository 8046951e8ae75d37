package cropper

import (
	"image"
	"math"
)

// Extract maps crop from viewport coordinates back to source pixel
// coordinates of an image of srcWidth x srcHeight pixels displayed at
// imageRect. The result is rounded to whole pixels and kept inside the
// source bounds. An empty imageRect yields an empty rectangle.
func Extract(crop, imageRect Rect, srcWidth, srcHeight int) image.Rectangle {
	if imageRect.Empty() || srcWidth <= 0 || srcHeight <= 0 {
		return image.Rectangle{}
	}

	rollbackX := float64(srcWidth) / imageRect.Width()
	rollbackY := float64(srcHeight) / imageRect.Height()
	toX := func(v float64) int {
		return int(math.Round((v - imageRect.Left) * rollbackX))
	}
	toY := func(v float64) int {
		return int(math.Round((v - imageRect.Top) * rollbackY))
	}

	r := image.Rect(toX(crop.Left), toY(crop.Top), toX(crop.Right), toY(crop.Bottom))
	return r.Intersect(image.Rect(0, 0, srcWidth, srcHeight))
}
