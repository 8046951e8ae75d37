package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Store persists cropped images and returns an opaque reference to them.
type Store interface {
	Save(ctx context.Context, img image.Image) (string, error)
}

// DirStore writes images into a directory, named after the time they
// were saved.
type DirStore struct {
	Dir     string
	Format  imaging.Format
	Quality int

	now func() time.Time
}

// NewDirStore returns a DirStore writing files with the given extension
// ("jpg" or "png").
func NewDirStore(dir, ext string, quality int) (*DirStore, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("unsupported output format %q: %w", ext, err)
	}
	return &DirStore{Dir: dir, Format: format, Quality: quality, now: time.Now}, nil
}

func (s *DirStore) extension() string {
	if s.Format == imaging.PNG {
		return ".png"
	}
	return ".jpg"
}

// Save encodes img and returns the path it was written to. Names that are
// already taken get a numeric suffix.
func (s *DirStore) Save(ctx context.Context, img image.Image) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	stem := fmt.Sprintf("%d", now().UnixMilli())

	var (
		f    *os.File
		path string
		err  error
	)
	for i := 0; i < 100; i++ {
		name := stem + s.extension()
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, s.extension())
		}
		path = filepath.Join(s.Dir, name)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, s.Format, imaging.JPEGQuality(s.Quality)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Ctx(ctx).Debug().Str("path", path).Msg("saved cropped image")
	return path, nil
}
