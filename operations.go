package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"briecrop/cropper"
)

type Operations = []Operation

// Operation is one unit of batch work: a recorded gesture to replay and
// save, or a layout inspection.
type Operation struct {
	Gesture *GestureOperation
	Inspect *InspectOperation
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var op struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &op); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	switch op.Type {
	case "gesture":
		var g GestureOperation
		if err := json.Unmarshal(data, &g); err != nil {
			return fmt.Errorf("failed to unmarshal gesture operation: %w", err)
		}
		o.Gesture = &g
	case "inspect":
		var in InspectOperation
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("failed to unmarshal inspect operation: %w", err)
		}
		o.Inspect = &in
	default:
		return fmt.Errorf("unknown operation %q", op.Type)
	}
	return nil
}

func (o Operation) MarshalJSON() ([]byte, error) {
	switch {
	case o.Gesture != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*GestureOperation
		}{"gesture", o.Gesture})
	case o.Inspect != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*InspectOperation
		}{"inspect", o.Inspect})
	}
	return nil, fmt.Errorf("empty operation")
}

type GestureOperation struct {
	Filename    string           `json:"filename"`
	Viewport    cropper.Viewport `json:"viewport"`
	Density     float64          `json:"density,omitempty"`
	MinimumSize *float64         `json:"minimum_size,omitempty"`
	// Orientation is the policy the events were recorded under. It
	// overrides the executor's policy, since the same events select a
	// different region once the image is rotated.
	Orientation *cropper.OrientationPolicy `json:"orientation,omitempty"`
	Events      []cropper.TouchEvent       `json:"events"`
}

func (g GestureOperation) widgetOptions() []cropper.Option {
	return SessionOptions{Density: g.Density, MinimumSize: g.MinimumSize}.widgetOptions()
}

type InspectOperation struct {
	Filename string           `json:"filename"`
	Viewport cropper.Viewport `json:"viewport"`
}

type OperationExecutor struct {
	BaseDir string
	Store   Store
	Policy  cropper.OrientationPolicy
}

func (r OperationExecutor) Exec(ctx context.Context, ops []Operation) error {
	if len(ops) == 0 {
		log.Ctx(ctx).Warn().Msg("no operations to execute")
		return nil
	}

	pooler := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())
	for _, op := range ops {
		pooler.Go(func(ctx context.Context) error {
			if err := r.executeOperation(ctx, op); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Interface("op", op).
					Msg("failed to execute operation")
				return err
			}
			return nil
		})
	}

	if err := pooler.Wait(); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Msg("finished with errors")
		return err
	}

	return nil
}

func (r OperationExecutor) executeOperation(ctx context.Context, op Operation) error {
	if op.Gesture != nil {
		_, err := r.executeGesture(ctx, *op.Gesture)
		return err
	} else if op.Inspect != nil {
		_, err := r.executeInspect(ctx, *op.Inspect)
		return err
	}
	return nil
}

// executeGesture replays the recorded events against a fresh widget and
// saves the resulting crop.
func (r OperationExecutor) executeGesture(ctx context.Context, op GestureOperation) (string, error) {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Int("events", len(op.Events)).Msg("cropping")
	for i, ev := range op.Events {
		if !ev.Phase.Valid() {
			return "", fmt.Errorf("%s: event %d has no valid phase", op.Filename, i)
		}
	}
	sourcePath, err := resolvePath(r.BaseDir, op.Filename)
	if err != nil {
		return "", err
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", sourcePath, err)
	}
	defer f.Close()

	policy := r.Policy
	if op.Orientation != nil {
		policy = *op.Orientation
	}
	img, orientation, err := cropper.Decode(ctx, f, policy)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op.Filename, err)
	}

	w := cropper.New(op.widgetOptions()...)
	if err := w.Resize(op.Viewport); err != nil {
		return "", err
	}
	if err := w.SetImage(img, orientation); err != nil {
		return "", fmt.Errorf("%s: %w", op.Filename, err)
	}
	if !w.Ready() {
		return "", fmt.Errorf("%s: %w: viewport %dx%d", op.Filename, cropper.ErrNotInitialized, op.Viewport.Width, op.Viewport.Height)
	}
	for _, ev := range op.Events {
		w.Handle(ev)
	}

	region, err := w.Region()
	if err != nil {
		return "", err
	}
	cropped, err := w.Crop()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op.Filename, err)
	}
	ref, err := r.Store.Save(ctx, cropped)
	if err != nil {
		return "", err
	}
	log.Ctx(ctx).Info().
		Str("filename", op.Filename).
		Str("region", region.String()).
		Str("saved", ref).
		Msg("cropped")
	return ref, nil
}

// executeInspect lays the image out without decoding its pixels.
func (r OperationExecutor) executeInspect(ctx context.Context, op InspectOperation) (cropper.Layout, error) {
	sourcePath, err := resolvePath(r.BaseDir, op.Filename)
	if err != nil {
		return cropper.Layout{}, err
	}
	info, err := probeImage(sourcePath)
	if err != nil {
		return cropper.Layout{}, fmt.Errorf("%s: %w", op.Filename, err)
	}

	src := cropper.SourceImage{Width: info.Width, Height: info.Height, Orientation: info.Orientation}
	if r.Policy == cropper.CorrectOrientation && info.Orientation.SwapsAxes() {
		src.Width, src.Height = src.Height, src.Width
	}
	l, err := cropper.NewLayout(op.Viewport, src)
	if err != nil {
		return cropper.Layout{}, fmt.Errorf("%s: %w", op.Filename, err)
	}
	log.Ctx(ctx).Info().
		Str("filename", op.Filename).
		Stringer("orientation", info.Orientation).
		Float64("scale", l.Transform.Scale).
		Stringer("image_rect", l.ImageRect).
		Msg("inspected")
	return l, nil
}
