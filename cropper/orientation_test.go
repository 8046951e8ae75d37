package cropper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"briecrop/cropper/croppertest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestReadOrientationWithoutExif(t *testing.T) {
	o, err := ReadOrientation(bytes.NewReader(encodePNG(t, patternImage(4, 4))))
	require.True(t, errors.Is(err, ErrOrientationLookup))
	require.Equal(t, OrientationNotApplicable, o)
}

func exifJPEG(t *testing.T, w, h int, o uint16) []byte {
	t.Helper()
	b, err := croppertest.JPEG(patternImage(w, h), o)
	require.NoError(t, err)
	return b
}

func TestReadOrientationExif(t *testing.T) {
	for code := OrientationNormal; code <= OrientationRotate90; code++ {
		o, err := ReadOrientation(bytes.NewReader(exifJPEG(t, 8, 4, uint16(code))))
		require.NoError(t, err, code.String())
		require.Equal(t, code, o)
	}

	// EXIF block present, orientation tag missing or out of range
	for _, code := range []uint16{0, 9} {
		o, err := ReadOrientation(bytes.NewReader(exifJPEG(t, 8, 4, code)))
		require.NoError(t, err)
		require.Equal(t, OrientationUnavailable, o)
	}
}

func TestDecodePolicy(t *testing.T) {
	data := exifJPEG(t, 40, 20, uint16(OrientationRotate270))
	for _, tc := range []struct {
		policy OrientationPolicy
		w, h   int
	}{
		{CorrectOrientation, 20, 40},
		{KeepDecoded, 40, 20},
	} {
		img, o, err := Decode(context.Background(), bytes.NewReader(data), tc.policy)
		require.NoError(t, err, tc.policy.String())
		require.Equal(t, OrientationRotate270, o)
		require.Equal(t, image.Rect(0, 0, tc.w, tc.h), img.Bounds(), tc.policy.String())
	}

	// no EXIF at all: nothing to correct
	img, o, err := Decode(context.Background(), bytes.NewReader(encodePNG(t, patternImage(40, 20))), CorrectOrientation)
	require.NoError(t, err)
	require.Equal(t, OrientationNotApplicable, o)
	require.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
}

func TestOrientationPolicyText(t *testing.T) {
	for _, p := range []OrientationPolicy{KeepDecoded, CorrectOrientation} {
		b, err := p.MarshalText()
		require.NoError(t, err)
		var got OrientationPolicy
		require.NoError(t, got.UnmarshalText(b))
		require.Equal(t, p, got)
	}
	var p OrientationPolicy
	require.Error(t, p.UnmarshalText([]byte("sideways")))
}

func TestOrient(t *testing.T) {
	src := patternImage(20, 10)
	for _, tc := range []struct {
		o    Orientation
		w, h int
	}{
		{OrientationNotApplicable, 20, 10},
		{OrientationUnavailable, 20, 10},
		{OrientationNormal, 20, 10},
		{OrientationFlipH, 20, 10},
		{OrientationRotate180, 20, 10},
		{OrientationFlipV, 20, 10},
		{OrientationTranspose, 10, 20},
		{OrientationRotate270, 10, 20},
		{OrientationTransverse, 10, 20},
		{OrientationRotate90, 10, 20},
	} {
		b := Orient(src, tc.o).Bounds()
		require.Equal(t, tc.w, b.Dx(), tc.o.String())
		require.Equal(t, tc.h, b.Dy(), tc.o.String())
		require.Equal(t, tc.o.SwapsAxes(), tc.w != 20, tc.o.String())
	}
}

func TestOrientationString(t *testing.T) {
	require.Equal(t, "not-applicable", OrientationNotApplicable.String())
	require.Equal(t, "rotate-90", OrientationRotate90.String())
	require.Equal(t, "orientation(42)", Orientation(42).String())
	require.True(t, OrientationRotate90.Valid())
	require.False(t, OrientationUnavailable.Valid())
}

func TestPhaseText(t *testing.T) {
	var p Phase
	require.NoError(t, p.UnmarshalText([]byte("move")))
	require.Equal(t, PhaseMove, p)
	require.Error(t, p.UnmarshalText([]byte("hover")))

	b, err := PhaseRelease.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "release", string(b))

	var zero Phase
	require.False(t, zero.Valid())
	_, err = zero.MarshalText()
	require.Error(t, err)
	require.Error(t, p.UnmarshalText([]byte("")))

	var ev TouchEvent
	require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":2}`), &ev))
	require.False(t, ev.Phase.Valid())
}
