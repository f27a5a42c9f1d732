// Package media stores uploaded item images after compressing them.
//
// Every image is decoded, flattened onto a white background (JPEG has no
// alpha channel), scaled down to MaxWidth with Lanczos resampling while
// keeping its aspect ratio, and encoded as JPEG at Quality. Images already
// narrower than MaxWidth keep their size.
package media

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Defaults used when Processor fields are zero.
const (
	DefaultMaxWidth = 800
	DefaultQuality  = 85
)

// ErrDecode is returned when the upload is not a supported image.
var ErrDecode = errors.New("media: unsupported or corrupt image")

// Processor compresses images and writes them under Dir.
type Processor struct {
	Dir      string // media root; files land in Dir/items
	MaxWidth int
	Quality  int
}

// Compress decodes r and returns the flattened, resized image.
func (p *Processor) Compress(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	if maxW := p.maxWidth(); flat.Bounds().Dx() > maxW {
		return imaging.Resize(flat, maxW, 0, imaging.Lanczos), nil
	}
	return flat, nil
}

// Save compresses r and writes it as a new JPEG file. It returns the path
// relative to Dir, using forward slashes.
func (p *Processor) Save(r io.Reader) (string, error) {
	img, err := p.Compress(r)
	if err != nil {
		return "", err
	}
	rel := filepath.ToSlash(filepath.Join("items", uuid.NewString()+".jpg"))
	dst := filepath.Join(p.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("media: create directory: %w", err)
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(p.quality())); err != nil {
		return "", fmt.Errorf("media: save image: %w", err)
	}
	return rel, nil
}

// Remove deletes a file previously returned by Save. Missing files and
// paths escaping Dir are ignored.
func (p *Processor) Remove(rel string) error {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(p.Dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (p *Processor) maxWidth() int {
	if p.MaxWidth > 0 {
		return p.MaxWidth
	}
	return DefaultMaxWidth
}

func (p *Processor) quality() int {
	if p.Quality > 0 && p.Quality <= 100 {
		return p.Quality
	}
	return DefaultQuality
}
