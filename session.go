package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"briecrop/cropper"
)

var (
	errSessionNotFound = errors.New("session not found")
	errSessionClosed   = errors.New("session closed")
)

// SessionOptions configure a new crop session.
type SessionOptions struct {
	File        string           `json:"file"`
	Viewport    cropper.Viewport `json:"viewport"`
	Density     float64          `json:"density"`
	MinimumSize *float64         `json:"minimum_size"`
}

func (o SessionOptions) widgetOptions() []cropper.Option {
	opts := []cropper.Option{cropper.WithDensity(cropper.Density(o.Density))}
	if o.MinimumSize != nil {
		opts = append(opts, cropper.WithMinimumSize(*o.MinimumSize))
	}
	return opts
}

// PixelRect is a rectangle in source pixels.
type PixelRect struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

func pixelRect(r image.Rectangle) PixelRect {
	return PixelRect{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// SessionView is a snapshot of a session's widget.
type SessionView struct {
	ID          string              `json:"id"`
	File        string              `json:"file"`
	Ready       bool                `json:"ready"`
	Loading     bool                `json:"loading"`
	Error       string              `json:"error,omitempty"`
	Viewport    cropper.Viewport    `json:"viewport"`
	Orientation cropper.Orientation `json:"orientation"`
	Layout      *cropper.Layout     `json:"layout,omitempty"`
	CropRect    *cropper.Rect       `json:"crop_rect,omitempty"`
	Region      *PixelRect          `json:"region,omitempty"`
	Overlay     *cropper.Overlay    `json:"overlay,omitempty"`
}

// TouchResult is what a touch event did to a session.
type TouchResult struct {
	cropper.Response
	CropRect *cropper.Rect `json:"crop_rect,omitempty"`
}

// Session owns one widget on its own goroutine. Every access to the
// widget is marshalled onto that goroutine, and only that goroutine
// drains the loader.
type Session struct {
	ID   string
	opts SessionOptions
	path string

	widget *cropper.Widget
	loader *cropper.Loader
	cmds   chan func()
	done   chan struct{}
	cancel context.CancelFunc

	// owned by the session goroutine
	loading  bool
	loadErr  error
	recorded []cropper.TouchEvent
}

func newSession(ctx context.Context, path string, opts SessionOptions, policy cropper.OrientationPolicy) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:     uuid.NewString(),
		opts:   opts,
		path:   path,
		widget: cropper.New(opts.widgetOptions()...),
		loader: cropper.NewLoader(policy),
		cmds:   make(chan func()),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	// Without an image this only records the viewport.
	_ = s.widget.Resize(opts.Viewport)
	s.load(ctx)
	go s.run(ctx)
	return s
}

func (s *Session) load(ctx context.Context) {
	s.loading = true
	s.loadErr = nil
	s.recorded = nil
	s.loader.Load(ctx, func(context.Context) (io.ReadCloser, error) {
		return os.Open(s.path)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	logger := log.Ctx(ctx).With().Str("session", s.ID).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.loader.Results():
			err := s.loader.Apply(s.widget, res)
			if errors.Is(err, cropper.ErrStaleLoad) {
				continue
			}
			s.loading = false
			s.loadErr = err
			if err != nil {
				logger.Error().Err(err).Str("file", s.opts.File).Msg("failed to load image")
				continue
			}
			logger.Debug().Str("file", s.opts.File).Msg("image loaded")
		case fn := <-s.cmds:
			fn()
		}
	}
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.cmds <- func() { errc <- fn() }:
	case <-s.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) view() SessionView {
	w := s.widget
	v := SessionView{
		ID:          s.ID,
		File:        s.opts.File,
		Ready:       w.Ready(),
		Loading:     s.loading,
		Viewport:    w.Viewport(),
		Orientation: w.Orientation(),
	}
	if s.loadErr != nil {
		v.Error = s.loadErr.Error()
	}
	if !w.Ready() {
		return v
	}
	l, _ := w.Layout()
	crop, _ := w.CropRect()
	overlay, _ := w.Overlay()
	v.Layout, v.CropRect, v.Overlay = &l, &crop, &overlay
	if r, err := w.Region(); err == nil {
		pr := pixelRect(r)
		v.Region = &pr
	}
	return v
}

// View returns a snapshot of the session.
func (s *Session) View(ctx context.Context) (SessionView, error) {
	var v SessionView
	err := s.do(ctx, func() error {
		v = s.view()
		return nil
	})
	return v, err
}

// Touch feeds one touch event to the widget.
func (s *Session) Touch(ctx context.Context, ev cropper.TouchEvent) (TouchResult, error) {
	var res TouchResult
	err := s.do(ctx, func() error {
		res.Response = s.widget.Handle(ev)
		if !s.widget.Ready() {
			return nil
		}
		s.recorded = append(s.recorded, ev)
		crop, _ := s.widget.CropRect()
		res.CropRect = &crop
		return nil
	})
	return res, err
}

// Resize lays the image out for a new viewport, resetting the crop.
func (s *Session) Resize(ctx context.Context, vp cropper.Viewport) (SessionView, error) {
	var v SessionView
	err := s.do(ctx, func() error {
		s.opts.Viewport = vp
		s.recorded = nil
		if err := s.widget.Resize(vp); err != nil {
			return err
		}
		v = s.view()
		return nil
	})
	return v, err
}

// Reset returns the crop rect to the full image.
func (s *Session) Reset(ctx context.Context) (SessionView, error) {
	var v SessionView
	err := s.do(ctx, func() error {
		s.widget.Reset()
		s.recorded = nil
		v = s.view()
		return nil
	})
	return v, err
}

// Operation returns the gestures recorded since the last layout as a
// replayable operation.
func (s *Session) Operation(ctx context.Context) (Operation, error) {
	var op Operation
	err := s.do(ctx, func() error {
		events := make([]cropper.TouchEvent, len(s.recorded))
		copy(events, s.recorded)
		policy := s.loader.Policy()
		op.Gesture = &GestureOperation{
			Filename:    s.opts.File,
			Viewport:    s.opts.Viewport,
			Density:     s.opts.Density,
			MinimumSize: s.opts.MinimumSize,
			Orientation: &policy,
			Events:      events,
		}
		return nil
	})
	return op, err
}

// Crop extracts the selected region and saves it. The region is read on
// the session goroutine; the pixel copy and encoding happen on the
// caller's.
func (s *Session) Crop(ctx context.Context, store Store) (string, PixelRect, error) {
	var (
		src    image.Image
		region image.Rectangle
	)
	err := s.do(ctx, func() error {
		var err error
		region, err = s.widget.Region()
		src = s.widget.Source()
		return err
	})
	if err != nil {
		return "", PixelRect{}, err
	}

	img, err := cropper.CropImage(src, region)
	if err != nil {
		return "", PixelRect{}, err
	}
	ref, err := store.Save(ctx, img)
	if err != nil {
		return "", PixelRect{}, err
	}
	return ref, pixelRect(region), nil
}

// Close stops the session goroutine and waits for pending loads.
func (s *Session) Close() {
	s.cancel()
	<-s.done
	s.loader.Close()
}

// SessionManager tracks the open sessions.
type SessionManager struct {
	ctx    context.Context
	root   string
	policy cropper.OrientationPolicy

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager returns a manager for images below root. Sessions
// live until closed or until ctx is done.
func NewSessionManager(ctx context.Context, root string, policy cropper.OrientationPolicy) *SessionManager {
	return &SessionManager{
		ctx:      ctx,
		root:     root,
		policy:   policy,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for opts.File. The image loads in the background.
func (m *SessionManager) Open(opts SessionOptions) (*Session, error) {
	path, err := resolvePath(m.root, opts.File)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.File, err)
	}

	s := newSession(m.ctx, path, opts, m.policy)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Ctx(m.ctx).Info().Str("session", s.ID).Str("file", opts.File).Msg("session opened")
	return s, nil
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSessionNotFound, id)
	}
	return s, nil
}

func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errSessionNotFound, id)
	}
	s.Close()
	return nil
}

// CloseAll closes every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
