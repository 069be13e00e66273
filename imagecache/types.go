package imagecache

import (
	"github.com/jmgilman/imagedesk/imaging"
	"github.com/jmgilman/imagedesk/internal/cache"
)

// Preview is a cached thumbnail of an image.
type Preview struct {
	Name   string `json:"imageName"`
	Base64 string `json:"base64Preview"`
	// Width and Height are the dimensions of the original image.
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	SizeBytes int64 `json:"imageSizeBytes"`
}

// FullImage is a cached full-resolution image.
type FullImage struct {
	Name      string `json:"imageName"`
	Base64    string `json:"base64Image"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"imageSizeBytes"`
}

// Failure records an image whose preview could not be produced.
type Failure struct {
	Name string
	Err  error
}

// ListResult is the outcome of ListPreviewsDetailed.
type ListResult struct {
	// Previews holds cached entries first, then new ones in completion order.
	Previews []Preview
	// Failures holds the images that were skipped.
	Failures []Failure
}

// Rename maps an old relative name to its new one.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Stats reports the size of both caches and the collected metrics.
type Stats struct {
	Previews   int
	FullImages int
	Metrics    cache.Snapshot
}

// PreviewGenerator produces the preview of encoded image data.
// *imaging.Generator implements it.
type PreviewGenerator interface {
	Generate(data []byte, name string) (imaging.Thumbnail, error)
}
