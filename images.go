package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"briecrop/cropper"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

type ImageInfo struct {
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Format      string              `json:"format"`
	Orientation cropper.Orientation `json:"orientation"`
}

type FileInfo struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
	URL        string    `json:"url"`
	Image      ImageInfo `json:"image"`
}

type Directory struct {
	Name  string     `json:"name"`
	Files []FileInfo `json:"files"`
}

func isImageFile(path string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path)))
}

// walkImages lists every image below rootPath. Paths under skipDir are
// left out so cropped output is not offered for cropping again.
func walkImages(ctx context.Context, rootPath, skipDir string) (Directory, error) {
	var files []FileInfo

	if err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir != "" && path != rootPath && filepath.Clean(path) == filepath.Clean(skipDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isImageFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}
		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		files = append(files, FileInfo{
			Name:       filepath.ToSlash(relPath),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	}); err != nil {
		return Directory{}, err
	}

	for i := range files {
		img, err := probeImage(filepath.Join(rootPath, filepath.FromSlash(files[i].Name)))
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("filename", files[i].Name).Msg("cannot read image dimensions")
			continue
		}
		files[i].Image = img
	}

	return Directory{
		Name:  filepath.Base(rootPath),
		Files: files,
	}, nil
}

// probeImage reads an image's dimensions and orientation hint without
// decoding its pixels.
func probeImage(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ImageInfo{}, err
	}

	// A missing orientation is reported as not applicable.
	o, _ := cropper.ReadOrientation(f)

	return ImageInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		Orientation: o,
	}, nil
}

var errOutsideRoot = errors.New("file is outside the root directory")

// resolvePath joins name onto root and rejects names escaping it.
func resolvePath(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty file name", errOutsideRoot)
	}
	full := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, name)
	}
	return full, nil
}
