package cropper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOverlay(t *testing.T) {
	o := NewOverlay(Rect{100, 300, 400, 600}, Rect{0, 250, 1000, 750}, 8)

	require.Equal(t, Rect{100, 300, 400, 600}, o.Frame)
	require.Equal(t, Line{Point{200, 300}, Point{200, 600}}, o.Guides[0])
	require.Equal(t, Line{Point{300, 300}, Point{300, 600}}, o.Guides[1])
	require.Equal(t, Line{Point{100, 400}, Point{400, 400}}, o.Guides[2])
	require.Equal(t, Line{Point{100, 500}, Point{400, 500}}, o.Guides[3])
	require.Equal(t, [4]Point{{100, 300}, {400, 300}, {100, 600}, {400, 600}}, o.Handles)
	require.Equal(t, 8.0, o.HandleRadius)
	require.Equal(t, []Rect{
		{0, 250, 1000, 300},
		{0, 600, 1000, 750},
		{0, 300, 100, 600},
		{400, 300, 1000, 600},
	}, o.Mask)
}

func TestNewOverlayFullCrop(t *testing.T) {
	r := Rect{0, 250, 1000, 750}
	require.Empty(t, NewOverlay(r, r, 8).Mask)
}
