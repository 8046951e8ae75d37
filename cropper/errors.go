package cropper

import "errors"

var (
	// ErrNotInitialized is returned by operations that need a laid out
	// image when none has been loaded yet.
	ErrNotInitialized = errors.New("cropper: not initialized")

	// ErrZeroDimensionImage is returned when a source image has no pixels
	// along one of its axes. The widget stays uninitialized.
	ErrZeroDimensionImage = errors.New("cropper: zero dimension image")

	// ErrOrientationLookup reports that no orientation could be read for
	// an image. It is never fatal to layout.
	ErrOrientationLookup = errors.New("cropper: orientation lookup failed")

	// ErrNoImage is returned by Crop when no pixel buffer is loaded.
	ErrNoImage = errors.New("cropper: no image loaded")

	// ErrStaleLoad is returned by Loader.Apply for results of superseded
	// loads.
	ErrStaleLoad = errors.New("cropper: superseded image load")
)
