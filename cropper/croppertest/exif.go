// Package croppertest builds encoded images for tests of code using
// package cropper.
package croppertest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
)

const (
	tagOrientation    = 0x0112
	tagResolutionUnit = 0x0128
	typeShort         = 3
)

// JPEG encodes img as a JPEG carrying an APP1 EXIF block with the given
// orientation tag. An orientation of 0 writes an EXIF block without an
// orientation tag.
func JPEG(img image.Image, orientation uint16) ([]byte, error) {
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}

	tag, value := uint16(tagOrientation), orientation
	if orientation == 0 {
		tag, value = tagResolutionUnit, 2
	}

	// Big-endian TIFF header followed by IFD0 holding a single SHORT entry.
	tiff := new(bytes.Buffer)
	tiff.WriteString("MM")
	be := binary.BigEndian
	for _, v := range []any{
		uint16(0x002a), uint32(8),
		uint16(1),
		tag, uint16(typeShort), uint32(1), value, uint16(0),
		uint32(0),
	} {
		_ = binary.Write(tiff, be, v)
	}

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	app1 := []byte{0xff, 0xe1, 0, 0}
	be.PutUint16(app1[2:], uint16(len(payload)+2))
	app1 = append(app1, payload...)

	data := enc.Bytes()
	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	out = append(out, data[2:]...)
	return out, nil
}
