package cropper

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	imageRect := Rect{0, 250, 1000, 750}
	for _, tc := range []struct {
		name string
		crop Rect
		want image.Rectangle
	}{
		{"full", imageRect, image.Rect(0, 0, 2000, 1000)},
		{"top-left dragged", Rect{50, 300, 1000, 750}, image.Rect(100, 100, 2000, 1000)},
		{"center", Rect{250, 375, 750, 625}, image.Rect(500, 250, 1500, 750)},
		{"rounds", Rect{10.3, 250.2, 20.7, 260.26}, image.Rect(21, 0, 41, 21)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Extract(tc.crop, imageRect, 2000, 1000))
		})
	}
}

func TestExtractFullImage(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		vp := Viewport{Width: 1 + rng.Intn(2000), Height: 1 + rng.Intn(2000)}
		src := SourceImage{Width: 1 + rng.Intn(6000), Height: 1 + rng.Intn(6000)}
		l, err := NewLayout(vp, src)
		require.NoError(t, err)
		got := Extract(l.ImageRect, l.ImageRect, src.Width, src.Height)
		require.Equal(t, image.Rect(0, 0, src.Width, src.Height), got, "vp=%+v src=%+v", vp, src)
	}
}

func TestExtractStaysInSource(t *testing.T) {
	imageRect := Rect{0, 250, 1000, 750}
	got := Extract(Rect{-10, 200, 1010, 800}, imageRect, 2000, 1000)
	require.Equal(t, image.Rect(0, 0, 2000, 1000), got)
}

func TestExtractEmpty(t *testing.T) {
	require.True(t, Extract(Rect{0, 0, 10, 10}, Rect{}, 100, 100).Empty())
	require.True(t, Extract(Rect{0, 0, 10, 10}, Rect{0, 0, 10, 10}, 0, 100).Empty())
}
