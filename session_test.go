package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"briecrop/cropper"
)

func newTestManager(t *testing.T) (*SessionManager, string) {
	t.Helper()
	root := t.TempDir()
	writeTestImage(t, root, "wide.png", 200, 100)
	ctx, cancel := context.WithCancel(context.Background())
	m := NewSessionManager(ctx, root, cropper.CorrectOrientation)
	t.Cleanup(func() {
		m.CloseAll()
		cancel()
	})
	return m, root
}

func waitReady(t *testing.T, s *Session) SessionView {
	t.Helper()
	var v SessionView
	require.Eventually(t, func() bool {
		var err error
		v, err = s.View(context.Background())
		return err == nil && !v.Loading
	}, 5*time.Second, 10*time.Millisecond)
	return v
}

func TestSessionLifecycle(t *testing.T) {
	m, root := newTestManager(t)
	ctx := context.Background()
	minimum := 10.0

	s, err := m.Open(SessionOptions{File: "wide.png", Viewport: cropper.Viewport{Width: 100, Height: 100}, MinimumSize: &minimum})
	require.NoError(t, err)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	v := waitReady(t, s)
	require.True(t, v.Ready)
	require.Empty(t, v.Error)
	require.Equal(t, cropper.Rect{Left: 0, Top: 25, Right: 100, Bottom: 75}, *v.CropRect)
	require.Equal(t, PixelRect{X0: 0, Y0: 0, X1: 200, Y1: 100}, *v.Region)

	res, err := s.Touch(ctx, cropper.Press(0, 25))
	require.NoError(t, err)
	require.True(t, res.Consumed)
	res, err = s.Touch(ctx, cropper.Move(50, 50))
	require.NoError(t, err)
	require.True(t, res.DisallowIntercept)
	require.Equal(t, cropper.Rect{Left: 50, Top: 50, Right: 100, Bottom: 75}, *res.CropRect)
	_, err = s.Touch(ctx, cropper.Release())
	require.NoError(t, err)

	op, err := s.Operation(ctx)
	require.NoError(t, err)
	require.Len(t, op.Gesture.Events, 3)
	require.Equal(t, "wide.png", op.Gesture.Filename)

	store, err := NewDirStore(filepath.Join(root, "output"), "png", 100)
	require.NoError(t, err)
	ref, region, err := s.Crop(ctx, store)
	require.NoError(t, err)
	require.Equal(t, PixelRect{X0: 100, Y0: 50, X1: 200, Y1: 100}, region)
	require.Equal(t, 100, decodeFile(t, ref).Bounds().Dx())

	// Replaying the recorded gesture gives the same crop.
	r := OperationExecutor{BaseDir: root, Store: store, Policy: cropper.CorrectOrientation}
	replayed, err := r.executeGesture(ctx, *op.Gesture)
	require.NoError(t, err)
	require.Equal(t, decodeFile(t, ref).Bounds(), decodeFile(t, replayed).Bounds())

	v, err = s.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, cropper.Rect{Left: 0, Top: 25, Right: 100, Bottom: 75}, *v.CropRect)

	v, err = s.Resize(ctx, cropper.Viewport{Width: 400, Height: 400})
	require.NoError(t, err)
	require.Equal(t, cropper.Rect{Left: 0, Top: 100, Right: 400, Bottom: 300}, *v.CropRect)
	op, err = s.Operation(ctx)
	require.NoError(t, err)
	require.Empty(t, op.Gesture.Events)

	require.NoError(t, m.Close(s.ID))
	_, err = m.Get(s.ID)
	require.True(t, errors.Is(err, errSessionNotFound))
	_, err = s.View(ctx)
	require.True(t, errors.Is(err, errSessionClosed))
	require.True(t, errors.Is(m.Close(s.ID), errSessionNotFound))
}

func TestSessionTouchBeforeReady(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Open(SessionOptions{File: "wide.png"})
	require.NoError(t, err)

	v := waitReady(t, s)
	require.False(t, v.Ready)
	require.Nil(t, v.CropRect)

	res, err := s.Touch(context.Background(), cropper.Press(1, 1))
	require.NoError(t, err)
	require.Equal(t, cropper.Response{}, res.Response)

	_, _, err = s.Crop(context.Background(), nil)
	require.True(t, errors.Is(err, cropper.ErrNotInitialized))
}

func TestSessionLoadError(t *testing.T) {
	m, root := newTestManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("nope"), 0644))

	s, err := m.Open(SessionOptions{File: "broken.png", Viewport: cropper.Viewport{Width: 10, Height: 10}})
	require.NoError(t, err)
	v := waitReady(t, s)
	require.False(t, v.Ready)
	require.NotEmpty(t, v.Error)

	_, _, err = s.Crop(context.Background(), nil)
	require.True(t, errors.Is(err, cropper.ErrNoImage))
}

func TestSessionOpenErrors(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Open(SessionOptions{File: "missing.png"})
	require.True(t, errors.Is(err, os.ErrNotExist))
	_, err = m.Open(SessionOptions{File: "../wide.png"})
	require.True(t, errors.Is(err, errOutsideRoot))
}
