package cropper

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLayout(t *testing.T) {
	for _, tc := range []struct {
		name  string
		vp    Viewport
		src   SourceImage
		scale float64
		want  Rect
	}{
		{"wide", Viewport{1000, 1000}, SourceImage{Width: 2000, Height: 1000}, 0.5, Rect{0, 250, 1000, 750}},
		{"tall", Viewport{1000, 1000}, SourceImage{Width: 500, Height: 2000}, 0.5, Rect{375, 0, 625, 1000}},
		{"upscale", Viewport{800, 400}, SourceImage{Width: 100, Height: 100}, 4, Rect{200, 0, 600, 400}},
		{"exact", Viewport{640, 480}, SourceImage{Width: 640, Height: 480}, 1, Rect{0, 0, 640, 480}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLayout(tc.vp, tc.src)
			require.NoError(t, err)
			require.InDelta(t, tc.scale, l.Transform.Scale, 1e-9)
			require.InDelta(t, tc.want.Left, l.ImageRect.Left, 1e-9)
			require.InDelta(t, tc.want.Top, l.ImageRect.Top, 1e-9)
			require.InDelta(t, tc.want.Right, l.ImageRect.Right, 1e-9)
			require.InDelta(t, tc.want.Bottom, l.ImageRect.Bottom, 1e-9)
		})
	}
}

func TestNewLayoutZeroDimension(t *testing.T) {
	for _, src := range []SourceImage{{Width: 0, Height: 10}, {Width: 10, Height: 0}, {}} {
		_, err := NewLayout(Viewport{100, 100}, src)
		require.True(t, errors.Is(err, ErrZeroDimensionImage), "%+v", src)
	}
}

func TestNewLayoutFitsViewport(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		vp := Viewport{Width: 1 + rng.Intn(3000), Height: 1 + rng.Intn(3000)}
		src := SourceImage{Width: 1 + rng.Intn(8000), Height: 1 + rng.Intn(8000)}
		l, err := NewLayout(vp, src)
		require.NoError(t, err)

		s := l.Transform.Scale
		require.LessOrEqual(t, s, float64(vp.Width)/float64(src.Width)+1e-12)
		require.LessOrEqual(t, s, float64(vp.Height)/float64(src.Height)+1e-12)

		r := l.ImageRect
		const eps = 1e-6
		require.GreaterOrEqual(t, r.Left, -eps)
		require.GreaterOrEqual(t, r.Top, -eps)
		require.LessOrEqual(t, r.Right, float64(vp.Width)+eps)
		require.LessOrEqual(t, r.Bottom, float64(vp.Height)+eps)

		// centered on both axes
		require.InDelta(t, r.Left, float64(vp.Width)-r.Right, eps)
		require.InDelta(t, r.Top, float64(vp.Height)-r.Bottom, eps)
	}
}
