package cropper

import (
	"fmt"
	"math"
)

// SourceImage describes the intrinsic size of a loaded image.
type SourceImage struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Orientation Orientation `json:"orientation"`
}

// Transform is a uniform scale followed by a translation. It maps source
// pixel coordinates to viewport coordinates.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// MapPoint maps a source pixel coordinate to the viewport.
func (t Transform) MapPoint(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// Apply maps r from source pixel space to the viewport.
func (t Transform) Apply(r Rect) Rect {
	l, tp := t.MapPoint(r.Left, r.Top)
	rt, b := t.MapPoint(r.Right, r.Bottom)
	return Rect{Left: l, Top: tp, Right: rt, Bottom: b}
}

// Layout is the placement of a source image inside a viewport.
type Layout struct {
	Viewport  Viewport    `json:"viewport"`
	Source    SourceImage `json:"source"`
	Transform Transform   `json:"transform"`
	ImageRect Rect        `json:"image_rect"`
}

// NewLayout fits src inside vp preserving its aspect ratio and centers it.
func NewLayout(vp Viewport, src SourceImage) (Layout, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return Layout{}, fmt.Errorf("%w: %dx%d", ErrZeroDimensionImage, src.Width, src.Height)
	}

	iw, ih := float64(src.Width), float64(src.Height)
	vw, vh := float64(max(vp.Width, 0)), float64(max(vp.Height, 0))

	scale := math.Min(vw/iw, vh/ih)
	t := Transform{
		Scale:      scale,
		TranslateX: (vw - scale*iw) / 2,
		TranslateY: (vh - scale*ih) / 2,
	}

	return Layout{
		Viewport:  vp,
		Source:    src,
		Transform: t,
		ImageRect: t.Apply(Rect{Right: iw, Bottom: ih}),
	}, nil
}
