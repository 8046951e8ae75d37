// Package cropper implements the geometry behind an interactive crop
// view.
//
// An image is fitted into a viewport (NewLayout), a crop rect starting at
// the full displayed image is edited by press, move and release events
// (Editor), and the final rect is mapped back to source pixels (Extract).
// Widget ties the three together for a single owning goroutine, and
// Loader decodes images in the background for it.
package cropper
