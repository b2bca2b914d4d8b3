// Package imageingest turns user-selected image files into bounded, embedded
// JPEG data URIs suitable for storing inside the content bundle.
package imageingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"mime/multipart"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the longer side of every ingested image.
	MaxDimension = 800
	// Quality is the JPEG quality used when re-encoding.
	Quality = 82
	// MaxPixels bounds the decoded size of a source image, checked from its
	// header before any pixel data is read.
	MaxPixels = 40_000_000

	dataURIPrefix = "data:image/jpeg;base64,"
)

var (
	ErrNotImage        = errors.New("file is not an image")
	ErrDecode          = errors.New("could not decode image")
	ErrNothingIngested = errors.New("no image in the selection could be processed")
)

// File is one entry of a user's file selection.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// IsImage reports whether the declared media type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.ContentType), "image/")
}

// FromMultipart adapts an uploaded form file.
func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FitWithin returns the size of a w×h image scaled so neither side exceeds
// bound. Images already within bounds keep their size.
func FitWithin(w, h, bound int) (int, int) {
	if w <= bound && h <= bound {
		return w, h
	}
	if w > h {
		return bound, clampPixels(float64(h) * float64(bound) / float64(w))
	}
	return clampPixels(float64(w) * float64(bound) / float64(h)), bound
}

func clampPixels(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}

// Ingest decodes f, downsizes it to MaxDimension and re-encodes it as a JPEG
// data URI.
func Ingest(ctx context.Context, f File) (string, error) {
	if !f.IsImage() {
		return "", fmt.Errorf("%s: %w", f.Name, ErrNotImage)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := checkSize(f); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", f.Name, err)
	}
	defer rc.Close()

	src, _, err := image.Decode(rc)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", f.Name, ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Encode(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return data, nil
}

// checkSize reads only the image header and rejects sources whose decoded
// raster would exceed MaxPixels.
func checkSize(f File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%s: open: %w", f.Name, err)
	}
	defer rc.Close()

	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", f.Name, ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%s: %w: %dx%d exceeds %d pixels", f.Name, ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// Encode renders src at its bounded size and returns the JPEG data URI.
func Encode(src image.Image) (string, error) {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), MaxDimension)

	// JPEG carries no alpha; composite onto white like a canvas export would.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI reverses Encode. It is used to inspect stored photos.
func DecodeDataURI(uri string) (image.Image, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, ErrNotImage
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
