package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"

	"github.com/solarfolio/solarfolio/internal/texture"
)

// Source resolves asset paths, preferring an on-disk directory over the
// embedded files.
type Source struct {
	Dir      string // may be empty
	Embedded fs.FS  // may be nil
}

// Open returns the asset at name.
func (s Source) Open(name string) (fs.File, error) {
	if s.Dir != "" {
		f, err := os.Open(filepath.Join(s.Dir, filepath.FromSlash(name)))
		if err == nil {
			return f, nil
		}
	}
	if s.Embedded != nil {
		return s.Embedded.Open(name)
	}
	return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
}

// Image returns a LoadFunc decoding name as png, jpeg or webp.
func (s Source) Image(name string) LoadFunc {
	return func(ctx context.Context) (image.Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := s.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return img, nil
	}
}

// Capped wraps load so images wider than maxWidth come back downscaled
// with their aspect ratio kept. maxWidth <= 0 disables the cap.
func Capped(load LoadFunc, maxWidth int) LoadFunc {
	return func(ctx context.Context) (image.Image, error) {
		img, err := load(ctx)
		if err != nil || maxWidth <= 0 {
			return img, err
		}
		b := img.Bounds()
		if b.Dx() <= maxWidth {
			return img, nil
		}
		h := max(1, b.Dy()*maxWidth/b.Dx())
		return texture.Resize(img, maxWidth, h), nil
	}
}
