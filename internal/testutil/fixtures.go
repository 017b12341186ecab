package testutil

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile creates path (and its parents) holding content and returns path.
func WriteFile(t *testing.T, path string, content []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Gradient returns a w x h image whose pixels differ by position, so two
// gradients of different sizes never encode to the same bytes.
func Gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	return img
}

// WritePNG encodes a w x h gradient to path.
func WritePNG(t *testing.T, path string, w, h int) string {
	t.Helper()
	return writeImage(t, path, func(f *os.File) error { return png.Encode(f, Gradient(w, h)) })
}

// WriteJPEG encodes a w x h gradient to path.
func WriteJPEG(t *testing.T, path string, w, h int) string {
	t.Helper()
	return writeImage(t, path, func(f *os.File) error {
		return jpeg.Encode(f, Gradient(w, h), &jpeg.Options{Quality: 90})
	})
}

func writeImage(t *testing.T, path string, encode func(*os.File) error) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	return path
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mt time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// ImageSize decodes the image at path and returns its dimensions.
func ImageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}
