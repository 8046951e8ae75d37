package cropper

import "fmt"

// TouchArea classifies where a press landed relative to the crop rect.
type TouchArea int

const (
	AreaNone TouchArea = iota
	AreaInside
	AreaTopLeft
	AreaTopRight
	AreaBottomLeft
	AreaBottomRight
)

var areaNames = map[TouchArea]string{
	AreaNone:        "none",
	AreaInside:      "inside",
	AreaTopLeft:     "top-left",
	AreaTopRight:    "top-right",
	AreaBottomLeft:  "bottom-left",
	AreaBottomRight: "bottom-right",
}

func (a TouchArea) String() string {
	if s, ok := areaNames[a]; ok {
		return s
	}
	return fmt.Sprintf("area(%d)", int(a))
}

// IsHandle reports whether a is one of the four corners.
func (a TouchArea) IsHandle() bool {
	return a >= AreaTopLeft && a <= AreaBottomRight
}

// Phase is the phase of a delivered touch event.
type Phase int

// The zero Phase is invalid.
const (
	PhasePress Phase = iota + 1
	PhaseMove
	PhaseRelease
)

var phaseNames = [...]string{PhasePress: "press", PhaseMove: "move", PhaseRelease: "release"}

// Valid reports whether p is one of the three phases.
func (p Phase) Valid() bool {
	return p >= PhasePress && p <= PhaseRelease
}

func (p Phase) String() string {
	if p.Valid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name != "" && string(text) == name {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// TouchEvent is a touch point in viewport local coordinates.
type TouchEvent struct {
	Phase Phase   `json:"phase"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func Press(x, y float64) TouchEvent { return TouchEvent{Phase: PhasePress, X: x, Y: y} }
func Move(x, y float64) TouchEvent  { return TouchEvent{Phase: PhaseMove, X: x, Y: y} }
func Release() TouchEvent           { return TouchEvent{Phase: PhaseRelease} }

// Session is the state of one gesture, fixed at press time.
type Session struct {
	LastX float64
	LastY float64
	Area  TouchArea
}

// State is the editor's gesture state: either Idle or Dragging.
type State interface {
	state()
}

// Idle means no gesture is in progress.
type Idle struct{}

// Dragging carries the session of the gesture in progress. Its area is
// never AreaNone.
type Dragging struct {
	Session
}

func (Idle) state()     {}
func (Dragging) state() {}

// Response tells the host how an event was interpreted.
type Response struct {
	// Consumed is true when the host should not handle the event itself.
	Consumed bool `json:"consumed"`
	// DisallowIntercept is true while the crop rect is being dragged, so
	// enclosing scroll containers must not steal the gesture.
	DisallowIntercept bool `json:"disallow_intercept"`
	// Redraw is true when the crop rect changed.
	Redraw bool `json:"redraw"`
}
