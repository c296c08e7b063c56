// Package imaging implements the avatar pipeline's resize/re-encode
// primitive on local image files.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strings"

	"golang.org/x/image/draw"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"

	// Source images commonly arrive as PNG or GIF screenshots and photos.
	_ "image/gif"
	_ "image/png"
)

const (
	// DefaultMaxDimension bounds the longest edge of the optimized image.
	DefaultMaxDimension = 1024
	// DefaultQuality is the JPEG encoding quality.
	DefaultQuality = 80
)

// Optimizer implements [authsync.ImageOptimizer]: decode a local file,
// scale it down so neither edge exceeds MaxDimension, and re-encode as
// JPEG. Images already inside the bound are re-encoded without scaling;
// nothing is ever upscaled.
type Optimizer struct {
	MaxDimension int
	Quality      int
}

var _ authsync.ImageOptimizer = (*Optimizer)(nil)

// NewOptimizer returns an Optimizer with the default bounds.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Optimize reads the image behind localURI and returns the optimized JPEG
// bytes. A file:// scheme prefix is accepted and stripped. All failures
// wrap [authsync.ErrOptimization].
func (o *Optimizer) Optimize(ctx context.Context, localURI string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", authsync.ErrOptimization, err)
	}

	path := strings.TrimPrefix(localURI, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", authsync.ErrOptimization, path, err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", authsync.ErrOptimization, path, err)
	}

	maxDim := o.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	quality := o.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	scaled := scaleDown(src, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", authsync.ErrOptimization, err)
	}
	return buf.Bytes(), nil
}

func scaleDown(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return src
	}

	if width >= height {
		height = height * maxDim / width
		width = maxDim
	} else {
		width = width * maxDim / height
		height = maxDim
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
