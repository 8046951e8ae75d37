package cropper

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

type options struct {
	density        Density
	minimumSizeDp  float64
	hitSlopDp      float64
	handleRadiusDp float64
}

// Option configures a Widget.
type Option func(*options)

// WithDensity sets the device density used to scale every dp length.
func WithDensity(d Density) Option {
	return func(o *options) {
		if d > 0 {
			o.density = d
		}
	}
}

// WithMinimumSize sets the smallest crop width and height, in dp.
func WithMinimumSize(dp float64) Option {
	return func(o *options) {
		if dp >= 0 {
			o.minimumSizeDp = dp
		}
	}
}

// WithHitSlop sets how far from a corner a press grabs it, in dp.
func WithHitSlop(dp float64) Option {
	return func(o *options) {
		if dp >= 0 {
			o.hitSlopDp = dp
		}
	}
}

// Widget is the crop view's geometric state: the laid out image, the
// crop rect and the gesture in progress.
//
// A Widget is not safe for concurrent use. All calls must come from the
// goroutine that owns it.
type Widget struct {
	opts options

	viewport    Viewport
	img         image.Image
	orientation Orientation

	ready  bool
	layout Layout
	crop   Rect
	state  State
}

// New returns an uninitialized Widget.
func New(opts ...Option) *Widget {
	o := options{
		density:        DefaultDensity,
		minimumSizeDp:  DefaultMinimumSizeDp,
		hitSlopDp:      DefaultHitSlopDp,
		handleRadiusDp: DefaultHandleRadiusDp,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Widget{opts: o, orientation: OrientationNotApplicable, state: Idle{}}
}

// MinimumSize returns the minimum crop edge in pixels.
func (w *Widget) MinimumSize() float64 {
	return w.opts.density.Px(w.opts.minimumSizeDp)
}

// HitSlop returns the corner hit slop in pixels.
func (w *Widget) HitSlop() float64 {
	return w.opts.density.Px(w.opts.hitSlopDp)
}

// Resize records a new viewport size. A loaded image is laid out again
// and its crop rect reset.
func (w *Widget) Resize(vp Viewport) error {
	w.viewport = vp
	return w.prepare()
}

// SetImage replaces the source image and lays it out. The orientation is
// kept as metadata only; pixels are used as given.
func (w *Widget) SetImage(img image.Image, o Orientation) error {
	w.img = img
	w.orientation = o
	return w.prepare()
}

// Clear drops the source image and returns to the uninitialized state.
func (w *Widget) Clear() {
	w.img = nil
	w.orientation = OrientationNotApplicable
	w.ready = false
	w.layout = Layout{}
	w.crop = Rect{}
	w.state = Idle{}
}

func (w *Widget) prepare() error {
	w.ready = false
	w.state = Idle{}
	if w.img == nil {
		return nil
	}

	b := w.img.Bounds()
	l, err := NewLayout(w.viewport, SourceImage{Width: b.Dx(), Height: b.Dy(), Orientation: w.orientation})
	if err != nil {
		w.img = nil
		return err
	}
	w.layout = l
	if l.ImageRect.Empty() {
		// Nothing to edit until the viewport has a size.
		return nil
	}
	w.crop = l.ImageRect
	w.ready = true
	return nil
}

// Reset sets the crop rect back to the full image.
func (w *Widget) Reset() {
	if !w.ready {
		return
	}
	w.crop = w.layout.ImageRect
	w.state = Idle{}
}

// Ready reports whether an image is laid out and touch handling is on.
func (w *Widget) Ready() bool { return w.ready }

func (w *Widget) Viewport() Viewport       { return w.viewport }
func (w *Widget) Orientation() Orientation { return w.orientation }
func (w *Widget) State() State             { return w.state }

// Layout returns the current layout.
func (w *Widget) Layout() (Layout, bool) {
	return w.layout, w.ready
}

// ImageRect returns where the image is displayed.
func (w *Widget) ImageRect() (Rect, bool) {
	return w.layout.ImageRect, w.ready
}

// CropRect returns the current crop rect.
func (w *Widget) CropRect() (Rect, bool) {
	return w.crop, w.ready
}

// Overlay returns the geometry of the crop elements to draw.
func (w *Widget) Overlay() (Overlay, bool) {
	if !w.ready {
		return Overlay{}, false
	}
	return NewOverlay(w.crop, w.layout.ImageRect, w.opts.density.Px(w.opts.handleRadiusDp)), true
}

func (w *Widget) editor() Editor {
	return Editor{
		Bounds:      w.layout.ImageRect,
		MinimumSize: w.MinimumSize(),
		HitSlop:     w.HitSlop(),
	}
}

// Press starts a gesture at (x, y).
func (w *Widget) Press(x, y float64) Response {
	if !w.ready {
		return Response{}
	}
	st, resp := w.editor().Press(w.crop, x, y)
	w.state = st
	return resp
}

// Move continues the gesture at (x, y).
func (w *Widget) Move(x, y float64) Response {
	if !w.ready {
		return Response{}
	}
	st, crop, resp := w.editor().Move(w.state, w.crop, x, y)
	w.state, w.crop = st, crop
	return resp
}

// Release ends the gesture.
func (w *Widget) Release() Response {
	if !w.ready {
		return Response{}
	}
	st, resp := w.editor().Release(w.state)
	w.state = st
	return resp
}

// Handle dispatches ev by phase.
func (w *Widget) Handle(ev TouchEvent) Response {
	switch ev.Phase {
	case PhasePress:
		return w.Press(ev.X, ev.Y)
	case PhaseMove:
		return w.Move(ev.X, ev.Y)
	case PhaseRelease:
		return w.Release()
	}
	return Response{}
}

// Region returns the crop rect in source pixel coordinates, with the
// origin at the top-left of the source image.
func (w *Widget) Region() (image.Rectangle, error) {
	if w.img == nil {
		return image.Rectangle{}, ErrNoImage
	}
	if !w.ready {
		return image.Rectangle{}, ErrNotInitialized
	}
	b := w.img.Bounds()
	return Extract(w.crop, w.layout.ImageRect, b.Dx(), b.Dy()), nil
}

// Source returns the loaded pixel buffer, or nil.
func (w *Widget) Source() image.Image { return w.img }

// Crop copies the selected region out of the source image.
func (w *Widget) Crop() (image.Image, error) {
	r, err := w.Region()
	if err != nil {
		return nil, err
	}
	return CropImage(w.img, r)
}

// CropImage copies region, given relative to the top-left of src, out of
// src. It may run on any goroutine as long as src is not being written.
func CropImage(src image.Image, region image.Rectangle) (image.Image, error) {
	if src == nil {
		return nil, ErrNoImage
	}
	if region.Empty() {
		return nil, fmt.Errorf("cropper: empty crop region %v", region)
	}
	return imaging.Crop(src, region.Add(src.Bounds().Min)), nil
}
