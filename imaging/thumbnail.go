package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/jmgilman/imagedesk/errors"
)

// Preview defaults.
const (
	DefaultMaxDimension = 200
	DefaultQuality      = 70
)

// Thumbnail is an encoded preview.
type Thumbnail struct {
	// Base64 is the base64 encoded JPEG preview.
	Base64 string
	// Width and Height are the dimensions of the original image.
	Width  int
	Height int
}

// Thumbnailer scales images down to previews.
type Thumbnailer struct {
	// MaxDimension bounds both sides of the preview, in pixels.
	MaxDimension int
	// Quality is the JPEG quality, 1-100.
	Quality int
}

// DefaultThumbnailer returns a Thumbnailer with a 200px bound and quality 70.
func DefaultThumbnailer() Thumbnailer {
	return Thumbnailer{MaxDimension: DefaultMaxDimension, Quality: DefaultQuality}
}

// Size returns the preview dimensions for an image of width x height.
func (t Thumbnailer) Size(width, height int) (int, int) {
	bound := t.bound()
	if width <= bound && height <= bound {
		return width, height
	}
	scale := float64(bound) / float64(max(width, height))
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return min(w, bound), min(h, bound)
}

func (t Thumbnailer) bound() int {
	if t.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return t.MaxDimension
}

func (t Thumbnailer) quality() int {
	if t.Quality <= 0 || t.Quality > 100 {
		return DefaultQuality
	}
	return t.Quality
}

// Thumbnail produces the preview of img. Failures carry code
// PREVIEW_GENERATION_FAILURE.
func (t Thumbnailer) Thumbnail(img image.Image) (Thumbnail, error) {
	if img == nil {
		return Thumbnail{}, errors.New(errors.CodePreviewFailed, "no image to preview")
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return Thumbnail{}, errors.WithContextMap(
			errors.New(errors.CodePreviewFailed, "image has no pixels"),
			map[string]interface{}{"width": width, "height": height},
		)
	}

	out := img
	if w, h := t.Size(width, height); w != width || h != height {
		out = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	data, err := t.Encode(out)
	if err != nil {
		return Thumbnail{}, err
	}
	return Thumbnail{
		Base64: base64.StdEncoding.EncodeToString(data),
		Width:  width,
		Height: height,
	}, nil
}

// Encode encodes img as a JPEG at the thumbnailer's quality.
func (t Thumbnailer) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.quality())); err != nil {
		return nil, errors.Wrap(err, errors.CodePreviewFailed, "failed to encode preview")
	}
	return buf.Bytes(), nil
}

// Generator decodes image bytes and produces their preview.
type Generator struct {
	Decoder     *Decoder
	Thumbnailer Thumbnailer
}

// NewGenerator creates a Generator with the default decoder.
func NewGenerator(t Thumbnailer) *Generator {
	return &Generator{Decoder: NewDecoder(), Thumbnailer: t}
}

// Generate decodes data and returns its preview. Decode failures carry code
// DECODE_FAILURE and preview failures PREVIEW_GENERATION_FAILURE.
func (g *Generator) Generate(data []byte, name string) (Thumbnail, error) {
	img, err := g.Decoder.Decode(data, name)
	if err != nil {
		return Thumbnail{}, err
	}
	thumb, err := g.Thumbnailer.Thumbnail(img)
	if err != nil {
		return Thumbnail{}, errors.WithContext(err, "name", name)
	}
	return thumb, nil
}
