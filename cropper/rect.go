package cropper

import "fmt"

// Rect is an axis aligned rectangle in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether (x, y) lies inside r. All four edges count as
// inside.
func (r Rect) Contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Top >= r.Top && o.Bottom <= r.Bottom
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

func (r Rect) String() string {
	return fmt.Sprintf("rect(%.2f,%.2f,%.2f,%.2f)", r.Left, r.Top, r.Right, r.Bottom)
}

// Viewport is the size of the view the image is displayed in, in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Density is the number of device pixels per density independent pixel.
type Density float64

// DefaultDensity matches a baseline 160dpi screen.
const DefaultDensity Density = 1

// Px converts a density independent length to device pixels.
func (d Density) Px(dp float64) float64 {
	if d <= 0 {
		d = DefaultDensity
	}
	return dp * float64(d)
}
