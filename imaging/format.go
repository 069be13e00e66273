package imaging

import (
	"path"
	"strings"
)

// Format is an image encoding.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatGIF
	FormatWebP
	FormatBMP
	FormatTIFF
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatJPEG:    "jpeg",
	FormatPNG:     "png",
	FormatGIF:     "gif",
	FormatWebP:    "webp",
	FormatBMP:     "bmp",
	FormatTIFF:    "tiff",
}

var extFormats = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".webp": FormatWebP,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

var mimeFormats = map[string]Format{
	"image/jpeg": FormatJPEG,
	"image/png":  FormatPNG,
	"image/gif":  FormatGIF,
	"image/webp": FormatWebP,
	"image/bmp":  FormatBMP,
	"image/tiff": FormatTIFF,
}

// String returns the lower-case name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnknown]
}

// FormatFromPath infers the format from the file extension, ignoring case.
func FormatFromPath(p string) Format {
	return extFormats[strings.ToLower(path.Ext(p))]
}

// FormatFromMIME maps a MIME type such as "image/png" to a Format.
func FormatFromMIME(mime string) Format {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mimeFormats[strings.TrimSpace(strings.ToLower(mime))]
}

// IsImage reports whether p has a supported image extension.
func IsImage(p string) bool {
	return FormatFromPath(p) != FormatUnknown
}
