package imaging

import (
	"bytes"
	"image"

	// Register the codecs image.DecodeConfig and image.Decode auto-detect.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jmgilman/imagedesk/errors"
)

// Probe reads only the image header and returns its dimensions.
func Probe(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.CodeDecodeFailed, "failed to read image header")
	}
	return cfg.Width, cfg.Height, nil
}

// ProberFunc returns the dimensions of encoded image data.
type ProberFunc func(data []byte) (width, height int, err error)
