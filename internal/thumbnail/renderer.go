// Package thumbnail renders JPEG thumbnails with the imaging library.
package thumbnail

import (
	"fmt"
	"image"
	"io"

	// Decoders beyond the imaging defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"pictier/internal/pt"
)

const DefaultJPEGQuality = 85

// Renderer decodes any registered image format, honours EXIF orientation,
// downsizes with a Lanczos filter and encodes JPEG.
type Renderer struct {
	quality int
}

// NewRenderer creates a renderer encoding at the given JPEG quality (1-100).
// Out-of-range values use DefaultJPEGQuality.
func NewRenderer(quality int) *Renderer {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Renderer{quality: quality}
}

// Render implements pt.ThumbnailRenderer.
func (r *Renderer) Render(src io.Reader, dst io.Writer, maxDim int) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: %v", pt.ErrDecode, err)
	}

	thumb := Scale(img, maxDim)

	if err := imaging.Encode(dst, thumb, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return fmt.Errorf("%w: %v", pt.ErrEncode, err)
	}
	return nil
}

// Scale fits img within maxDim on its longer side. Smaller images are
// returned unchanged.
func Scale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := pt.ThumbnailSize(b.Dx(), b.Dy(), maxDim)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

var _ pt.ThumbnailRenderer = (*Renderer)(nil)
