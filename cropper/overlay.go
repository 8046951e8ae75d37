package cropper

// DefaultHandleRadiusDp is the radius a handle is drawn with, in dp.
const DefaultHandleRadiusDp = 8

// Point is a viewport coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a segment between two viewport coordinates.
type Line struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Overlay is the geometry a renderer needs to draw the crop elements.
type Overlay struct {
	// Frame is the outline of the crop rect.
	Frame Rect `json:"frame"`
	// Guides are the rule of thirds lines: two vertical, then two
	// horizontal.
	Guides [4]Line `json:"guides"`
	// Handles are the corner centers in top-left, top-right, bottom-left,
	// bottom-right order.
	Handles      [4]Point `json:"handles"`
	HandleRadius float64  `json:"handle_radius"`
	// Mask covers the part of the image outside the crop rect with up to
	// four non overlapping rects.
	Mask []Rect `json:"mask"`
}

// NewOverlay computes the overlay for crop displayed inside imageRect.
func NewOverlay(crop, imageRect Rect, handleRadius float64) Overlay {
	w3, h3 := crop.Width()/3, crop.Height()/3
	x1, x2 := crop.Left+w3, crop.Right-w3
	y1, y2 := crop.Top+h3, crop.Bottom-h3

	o := Overlay{
		Frame: crop,
		Guides: [4]Line{
			{Point{x1, crop.Top}, Point{x1, crop.Bottom}},
			{Point{x2, crop.Top}, Point{x2, crop.Bottom}},
			{Point{crop.Left, y1}, Point{crop.Right, y1}},
			{Point{crop.Left, y2}, Point{crop.Right, y2}},
		},
		Handles: [4]Point{
			{crop.Left, crop.Top},
			{crop.Right, crop.Top},
			{crop.Left, crop.Bottom},
			{crop.Right, crop.Bottom},
		},
		HandleRadius: handleRadius,
	}

	candidates := []Rect{
		{imageRect.Left, imageRect.Top, imageRect.Right, crop.Top},
		{imageRect.Left, crop.Bottom, imageRect.Right, imageRect.Bottom},
		{imageRect.Left, crop.Top, crop.Left, crop.Bottom},
		{crop.Right, crop.Top, imageRect.Right, crop.Bottom},
	}
	for _, r := range candidates {
		if !r.Empty() {
			o.Mask = append(o.Mask, r)
		}
	}
	return o
}
