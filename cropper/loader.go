package cropper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads an encoded image and its orientation hint. With
// CorrectOrientation the pixels are passed through Orient so they come
// back upright; with KeepDecoded they are as stored. A failed orientation lookup is not an
// error here: the orientation is reported as OrientationNotApplicable.
func Decode(ctx context.Context, r io.Reader, policy OrientationPolicy) (image.Image, Orientation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, OrientationNotApplicable, fmt.Errorf("failed to read image: %w", err)
	}

	o, err := ReadOrientation(bytes.NewReader(data))
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("no orientation metadata")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(false))
	if err != nil {
		return nil, o, fmt.Errorf("failed to decode image: %w", err)
	}
	if policy == CorrectOrientation {
		img = Orient(img, o)
	}
	return img, o, nil
}

// Loaded is the outcome of one background load.
type Loaded struct {
	Generation  uint64
	Image       image.Image
	Orientation Orientation
	Err         error
}

// OpenFunc opens the encoded bytes of an image.
type OpenFunc func(ctx context.Context) (io.ReadCloser, error)

// Loader decodes images off the owning goroutine and hands results back
// over a channel. Every Load supersedes the previous one; results of
// superseded loads are dropped.
type Loader struct {
	policy  OrientationPolicy
	gen     atomic.Uint64
	results chan Loaded
	wg      conc.WaitGroup
}

// NewLoader returns a Loader decoding with the given orientation policy.
func NewLoader(policy OrientationPolicy) *Loader {
	return &Loader{
		policy:  policy,
		results: make(chan Loaded, 1),
	}
}

// Policy returns the orientation policy images are decoded with.
func (l *Loader) Policy() OrientationPolicy { return l.policy }

// Results delivers finished loads. Only the goroutine owning the widget
// should receive from it.
func (l *Loader) Results() <-chan Loaded { return l.results }

// Load starts decoding the image returned by open and returns the
// generation its result will carry.
func (l *Loader) Load(ctx context.Context, open OpenFunc) uint64 {
	gen := l.gen.Add(1)
	l.wg.Go(func() {
		res := l.decode(ctx, gen, open)
		if !l.current(gen) {
			log.Ctx(ctx).Debug().Uint64("generation", gen).Msg("discarding superseded image load")
			return
		}
		select {
		case l.results <- res:
		case <-ctx.Done():
		}
	})
	return gen
}

func (l *Loader) decode(ctx context.Context, gen uint64, open OpenFunc) Loaded {
	res := Loaded{Generation: gen, Orientation: OrientationNotApplicable}
	rc, err := open(ctx)
	if err != nil {
		res.Err = fmt.Errorf("failed to open image: %w", err)
		return res
	}
	defer rc.Close()

	res.Image, res.Orientation, res.Err = Decode(ctx, rc, l.policy)
	return res
}

func (l *Loader) current(gen uint64) bool {
	return l.gen.Load() == gen
}

// Accept reports whether res belongs to the most recent Load.
func (l *Loader) Accept(res Loaded) bool {
	return l.current(res.Generation)
}

// Apply installs res into w if it is current. It must be called on the
// goroutine owning w.
func (l *Loader) Apply(w *Widget, res Loaded) error {
	if !l.Accept(res) {
		return ErrStaleLoad
	}
	if res.Err != nil {
		return res.Err
	}
	return w.SetImage(res.Image, res.Orientation)
}

// Close waits for in-flight loads. The context passed to Load must be
// cancelled first if nobody drains Results.
func (l *Loader) Close() {
	l.wg.Wait()
}
