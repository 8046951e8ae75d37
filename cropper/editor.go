package cropper

import "math"

const (
	// DefaultMinimumSizeDp is the smallest crop edge, in dp.
	DefaultMinimumSizeDp = 100
	// DefaultHitSlopDp is how far from a corner a press still grabs the
	// handle, in dp.
	DefaultHitSlopDp = 24
)

// Editor applies touch gestures to a crop rect. It holds no gesture
// state of its own: callers thread State and the crop rect through each
// call and keep the returned values.
type Editor struct {
	// Bounds is the ImageRect the crop rect must stay inside.
	Bounds Rect
	// MinimumSize is the smallest width and height, in pixels.
	MinimumSize float64
	// HitSlop is the half size of the square around each corner that
	// grabs that corner, in pixels.
	HitSlop float64
}

// Classify reports which part of crop a press at (x, y) hits. Corners win
// over the interior and are tested in the order top-left, top-right,
// bottom-left, bottom-right.
func (e Editor) Classify(crop Rect, x, y float64) TouchArea {
	switch {
	case e.near(crop.Left, crop.Top, x, y):
		return AreaTopLeft
	case e.near(crop.Right, crop.Top, x, y):
		return AreaTopRight
	case e.near(crop.Left, crop.Bottom, x, y):
		return AreaBottomLeft
	case e.near(crop.Right, crop.Bottom, x, y):
		return AreaBottomRight
	case crop.Contains(x, y):
		return AreaInside
	}
	return AreaNone
}

func (e Editor) near(cx, cy, x, y float64) bool {
	return math.Abs(x-cx) <= e.HitSlop && math.Abs(y-cy) <= e.HitSlop
}

// Press starts a gesture. A press that misses the crop rect leaves the
// editor idle but is still consumed.
func (e Editor) Press(crop Rect, x, y float64) (State, Response) {
	area := e.Classify(crop, x, y)
	if area == AreaNone {
		return Idle{}, Response{Consumed: true}
	}
	return Dragging{Session{LastX: x, LastY: y, Area: area}}, Response{Consumed: true}
}

// Move continues a gesture and returns the next state and crop rect.
// Outside a drag the crop rect is returned untouched and enclosing
// containers are allowed to intercept.
func (e Editor) Move(st State, crop Rect, x, y float64) (State, Rect, Response) {
	d, ok := st.(Dragging)
	if !ok {
		return Idle{}, crop, Response{Consumed: true}
	}

	next := e.Apply(d.Area, crop, x-d.LastX, y-d.LastY)
	d.LastX, d.LastY = x, y
	return d, next, Response{Consumed: true, DisallowIntercept: true, Redraw: true}
}

// Release ends a gesture. The crop rect already holds its final value.
func (e Editor) Release(State) (State, Response) {
	return Idle{}, Response{}
}

// Apply edits crop by a delta according to area.
func (e Editor) Apply(area TouchArea, crop Rect, dx, dy float64) Rect {
	switch {
	case area == AreaInside:
		return e.clampPosition(crop.Translate(dx, dy))
	case area.IsHandle():
		return e.resize(area, crop, dx, dy)
	}
	return crop
}

// resize moves the two edges owned by a corner. An edge pushed past the
// minimum size is pulled back to it, then each edge is capped at the
// matching bound. The rect is never grown by the caps.
func (e Editor) resize(area TouchArea, r Rect, dx, dy float64) Rect {
	left := area == AreaTopLeft || area == AreaBottomLeft
	top := area == AreaTopLeft || area == AreaTopRight

	if left {
		r.Left += dx
	} else {
		r.Right += dx
	}
	if top {
		r.Top += dy
	} else {
		r.Bottom += dy
	}

	if r.Width() < e.MinimumSize {
		if left {
			r.Left = r.Right - e.MinimumSize
		} else {
			r.Right = r.Left + e.MinimumSize
		}
	}
	if r.Height() < e.MinimumSize {
		if top {
			r.Top = r.Bottom - e.MinimumSize
		} else {
			r.Bottom = r.Top + e.MinimumSize
		}
	}

	b := e.Bounds
	r.Left = math.Max(r.Left, b.Left)
	r.Right = math.Min(r.Right, b.Right)
	r.Top = math.Max(r.Top, b.Top)
	r.Bottom = math.Min(r.Bottom, b.Bottom)
	return r
}

// clampPosition shifts r back inside the bounds on every axis where it
// overshoots, keeping its size.
func (e Editor) clampPosition(r Rect) Rect {
	b := e.Bounds
	if w := r.Width(); r.Left < b.Left {
		r.Left = b.Left
		r.Right = math.Min(b.Left+w, b.Right)
	} else if r.Right > b.Right {
		r.Right = b.Right
		r.Left = math.Max(b.Right-w, b.Left)
	}
	if h := r.Height(); r.Top < b.Top {
		r.Top = b.Top
		r.Bottom = math.Min(b.Top+h, b.Bottom)
	} else if r.Bottom > b.Bottom {
		r.Bottom = b.Bottom
		r.Top = math.Max(b.Bottom-h, b.Top)
	}
	return r
}
