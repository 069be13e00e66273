package imaging

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/jmgilman/imagedesk/errors"
)

// JPEGDecoder decodes JPEG data straight to 8-bit RGBA pixels.
type JPEGDecoder interface {
	DecodeJPEG(data []byte) (*image.NRGBA, error)
}

// JPEGDecoderFunc adapts a function to JPEGDecoder.
type JPEGDecoderFunc func(data []byte) (*image.NRGBA, error)

// DecodeJPEG calls f(data).
func (f JPEGDecoderFunc) DecodeJPEG(data []byte) (*image.NRGBA, error) {
	return f(data)
}

// StdJPEGDecoder decodes baseline and progressive JPEGs and converts the
// YCbCr planes to RGBA across all CPUs.
type StdJPEGDecoder struct{}

// DecodeJPEG implements JPEGDecoder.
func (StdJPEGDecoder) DecodeJPEG(data []byte) (*image.NRGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

var codecs = map[Format]func(io.Reader) (image.Image, error){
	FormatJPEG: jpeg.Decode,
	FormatPNG:  png.Decode,
	FormatGIF:  gif.Decode,
	FormatWebP: webp.Decode,
	FormatBMP:  bmp.Decode,
	FormatTIFF: tiff.Decode,
}

// Decoder turns encoded image bytes into pixels.
type Decoder struct {
	// JPEG is the fast path for files with a JPEG extension.
	// Defaults to StdJPEGDecoder.
	JPEG JPEGDecoder
}

// NewDecoder creates a Decoder with the default JPEG fast path.
func NewDecoder() *Decoder {
	return &Decoder{JPEG: StdJPEGDecoder{}}
}

// Decode decodes data. name is only used for its extension and for error
// context. The error carries code DECODE_FAILURE and wraps the last
// failure once every strategy has been tried.
func (d *Decoder) Decode(data []byte, name string) (*image.NRGBA, error) {
	hint := FormatFromPath(name)
	var lastErr error

	if hint == FormatJPEG {
		fast := d.JPEG
		if fast == nil {
			fast = StdJPEGDecoder{}
		}
		img, err := fast.DecodeJPEG(data)
		if err == nil {
			return img, nil
		}
		lastErr = err
	}

	if codec, ok := codecs[hint]; ok && hint != FormatJPEG {
		img, err := codec(bytes.NewReader(data))
		if err == nil {
			return imaging.Clone(img), nil
		}
		lastErr = err
	}

	sniffed := mimetype.Detect(data)
	if format := FormatFromMIME(sniffed.String()); format != FormatUnknown && format != hint {
		img, err := codecs[format](bytes.NewReader(data))
		if err == nil {
			return imaging.Clone(img), nil
		}
		lastErr = err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return imaging.Clone(img), nil
	}
	if lastErr == nil {
		lastErr = err
	}

	return nil, errors.WrapWithContext(lastErr, errors.CodeDecodeFailed, "failed to decode image",
		map[string]interface{}{
			"name":    name,
			"format":  hint.String(),
			"sniffed": sniffed.String(),
		})
}
