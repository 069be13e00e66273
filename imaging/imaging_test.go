package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jmgilman/imagedesk/errors"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, f Format, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, nil)
	default:
		t.Fatalf("no encoder for %s", f)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.jpg", FormatJPEG},
		{"f/A.JPEG", FormatJPEG},
		{"a.png", FormatPNG},
		{"a.gif", FormatGIF},
		{"a.webp", FormatWebP},
		{"a.bmp", FormatBMP},
		{"a.tif", FormatTIFF},
		{"a.TIFF", FormatTIFF},
		{"a.txt", FormatUnknown},
		{"noext", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
			assert.Equal(t, tt.want != FormatUnknown, IsImage(tt.path))
		})
	}
}

func TestFormatFromMIME(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatFromMIME("image/png"))
	assert.Equal(t, FormatJPEG, FormatFromMIME("IMAGE/JPEG; charset=binary"))
	assert.Equal(t, FormatUnknown, FormatFromMIME("text/plain"))
	assert.Equal(t, "webp", FormatWebP.String())
	assert.Equal(t, "unknown", Format(99).String())
}

func TestDecode_Formats(t *testing.T) {
	src := testImage(64, 48)
	formats := []struct {
		format Format
		name   string
	}{
		{FormatJPEG, "a.jpg"},
		{FormatPNG, "a.png"},
		{FormatGIF, "a.gif"},
		{FormatBMP, "a.bmp"},
		{FormatTIFF, "a.tiff"},
	}

	d := NewDecoder()
	for _, tt := range formats {
		t.Run(tt.format.String(), func(t *testing.T) {
			img, err := d.Decode(encode(t, tt.format, src), tt.name)
			require.NoError(t, err)
			assert.Equal(t, 64, img.Bounds().Dx())
			assert.Equal(t, 48, img.Bounds().Dy())
		})
	}
}

func TestDecode_MismatchedExtension(t *testing.T) {
	data := encode(t, FormatPNG, testImage(10, 20))

	for _, name := range []string{"lies.jpg", "lies.bmp", "noextension"} {
		t.Run(name, func(t *testing.T) {
			img, err := NewDecoder().Decode(data, name)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 10, 20), img.Bounds())
		})
	}
}

func TestDecode_FastPathFallback(t *testing.T) {
	calls := 0
	d := &Decoder{JPEG: JPEGDecoderFunc(func([]byte) (*image.NRGBA, error) {
		calls++
		return nil, errors.New(errors.CodeDecodeFailed, "unsupported")
	})}

	img, err := d.Decode(encode(t, FormatJPEG, testImage(30, 30)), "a.jpeg")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 30, img.Bounds().Dx())

	_, err = d.Decode(encode(t, FormatPNG, testImage(5, 5)), "a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "fast path is only used for JPEG names")
}

func TestDecode_Failure(t *testing.T) {
	_, err := NewDecoder().Decode([]byte("definitely not an image"), "bad.jpg")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDecodeFailed, errors.GetCode(err))
	assert.False(t, errors.IsRetryable(err))

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.jpg", pe.Context()["name"])
	assert.Equal(t, "jpeg", pe.Context()["format"])
	assert.NotEmpty(t, pe.Context()["sniffed"])
	assert.NotNil(t, pe.Unwrap())
}

func TestProbe(t *testing.T) {
	w, h, err := Probe(encode(t, FormatJPEG, testImage(123, 45)))
	require.NoError(t, err)
	assert.Equal(t, 123, w)
	assert.Equal(t, 45, h)

	w, h, err = Probe(encode(t, FormatTIFF, testImage(7, 9)))
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 9, h)

	_, _, err = Probe([]byte("nope"))
	assert.Equal(t, errors.CodeDecodeFailed, errors.GetCode(err))
}

func TestThumbnailer_Size(t *testing.T) {
	th := DefaultThumbnailer()
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 4000, 3000, 200, 150},
		{"portrait", 300, 1200, 50, 200},
		{"square", 500, 500, 200, 200},
		{"within bound", 200, 120, 200, 120},
		{"sliver", 10000, 1, 200, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := th.Size(tt.w, tt.h)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func decodePreview(t *testing.T, thumb Thumbnail) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(thumb.Base64)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "previews are always JPEG")
	return img
}

func TestThumbnail_Bound(t *testing.T) {
	sizes := [][2]int{{1000, 500}, {201, 201}, {300, 1200}, {640, 480}}
	th := DefaultThumbnailer()

	for _, size := range sizes {
		thumb, err := th.Thumbnail(testImage(size[0], size[1]))
		require.NoError(t, err)

		assert.Equal(t, size[0], thumb.Width, "original width is reported")
		assert.Equal(t, size[1], thumb.Height, "original height is reported")

		b := decodePreview(t, thumb).Bounds()
		assert.LessOrEqual(t, max(b.Dx(), b.Dy()), 200)
	}
}

func TestThumbnail_IdentityWithinBound(t *testing.T) {
	src := testImage(120, 80)
	th := DefaultThumbnailer()

	thumb, err := th.Thumbnail(src)
	require.NoError(t, err)

	direct, err := th.Encode(src)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(direct), thumb.Base64)
	assert.Equal(t, image.Rect(0, 0, 120, 80), decodePreview(t, thumb).Bounds())
}

func TestThumbnail_FromAnyFormat(t *testing.T) {
	gen := NewGenerator(DefaultThumbnailer())
	thumb, err := gen.Generate(encode(t, FormatPNG, testImage(400, 100)), "wide.png")
	require.NoError(t, err)
	assert.Equal(t, 400, thumb.Width)
	assert.Equal(t, 100, thumb.Height)
	assert.Equal(t, image.Rect(0, 0, 200, 50), decodePreview(t, thumb).Bounds())
}

func TestThumbnail_Errors(t *testing.T) {
	th := DefaultThumbnailer()

	_, err := th.Thumbnail(nil)
	assert.Equal(t, errors.CodePreviewFailed, errors.GetCode(err))

	_, err = th.Thumbnail(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	assert.Equal(t, errors.CodePreviewFailed, errors.GetCode(err))

	_, err = NewGenerator(th).Generate([]byte("garbage"), "x.png")
	assert.Equal(t, errors.CodeDecodeFailed, errors.GetCode(err))
}

func TestThumbnailer_Defaults(t *testing.T) {
	var zero Thumbnailer
	w, h := zero.Size(400, 400)
	assert.Equal(t, DefaultMaxDimension, w)
	assert.Equal(t, DefaultMaxDimension, h)

	_, err := zero.Thumbnail(testImage(10, 10))
	assert.NoError(t, err)
}
