package cropper

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is an EXIF orientation code.
type Orientation int

const (
	// OrientationNotApplicable marks a source that carries no orientation
	// metadata at all. It is distinct from a real upright orientation.
	OrientationNotApplicable Orientation = -1
	// OrientationUnavailable marks metadata that exists but has no usable
	// orientation value.
	OrientationUnavailable Orientation = 0
)

const (
	OrientationNormal Orientation = iota + 1
	OrientationFlipH
	OrientationRotate180
	OrientationFlipV
	OrientationTranspose
	OrientationRotate270
	OrientationTransverse
	OrientationRotate90
)

func (o Orientation) String() string {
	switch o {
	case OrientationNotApplicable:
		return "not-applicable"
	case OrientationUnavailable:
		return "unavailable"
	case OrientationNormal:
		return "normal"
	case OrientationFlipH:
		return "flip-horizontal"
	case OrientationRotate180:
		return "rotate-180"
	case OrientationFlipV:
		return "flip-vertical"
	case OrientationTranspose:
		return "transpose"
	case OrientationRotate270:
		return "rotate-270"
	case OrientationTransverse:
		return "transverse"
	case OrientationRotate90:
		return "rotate-90"
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// Valid reports whether o is one of the eight EXIF codes.
func (o Orientation) Valid() bool {
	return o >= OrientationNormal && o <= OrientationRotate90
}

// SwapsAxes reports whether correcting o exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	return o >= OrientationTranspose && o <= OrientationRotate90
}

// ReadOrientation reads the EXIF orientation tag from r.
//
// A reader without an EXIF block yields OrientationNotApplicable together
// with an error wrapping ErrOrientationLookup. An EXIF block without a
// valid tag yields OrientationUnavailable and no error.
func ReadOrientation(r io.Reader) (Orientation, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return OrientationNotApplicable, fmt.Errorf("%w: %v", ErrOrientationLookup, err)
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationUnavailable, nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return OrientationUnavailable, nil
	}
	o := Orientation(v)
	if !o.Valid() {
		return OrientationUnavailable, nil
	}
	return o, nil
}

// Orient returns img transformed so that an image stored with orientation
// o is displayed upright. Codes outside 2..8 return img unchanged.
func Orient(img image.Image, o Orientation) image.Image {
	switch o {
	case OrientationFlipH:
		return imaging.FlipH(img)
	case OrientationRotate180:
		return imaging.Rotate180(img)
	case OrientationFlipV:
		return imaging.FlipV(img)
	case OrientationTranspose:
		return imaging.Transpose(img)
	case OrientationRotate270:
		return imaging.Rotate270(img)
	case OrientationTransverse:
		return imaging.Transverse(img)
	case OrientationRotate90:
		return imaging.Rotate90(img)
	}
	return img
}

// OrientationPolicy declares whether decoded pixels are corrected for
// their EXIF orientation before layout.
type OrientationPolicy int

const (
	// KeepDecoded lays out pixels exactly as stored.
	KeepDecoded OrientationPolicy = iota
	// CorrectOrientation rotates pixels upright before layout.
	CorrectOrientation
)

func (p OrientationPolicy) String() string {
	if p == CorrectOrientation {
		return "correct"
	}
	return "keep"
}

func (p OrientationPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *OrientationPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "keep":
		*p = KeepDecoded
	case "correct":
		*p = CorrectOrientation
	default:
		return fmt.Errorf("unknown orientation policy %q", text)
	}
	return nil
}
