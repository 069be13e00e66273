// Package imaging turns image bytes into pixels and pixels into previews.
//
// Decoding cascades through three strategies until one succeeds:
//
//  1. JPEG files (by extension) go through the JPEGDecoder fast path.
//  2. The codec named by the file extension is tried.
//  3. The content is sniffed and decoded by whatever codec matches it.
//
// This keeps the common case fast while files with a wrong or missing
// extension still decode. Supported formats are JPEG, PNG, GIF, WebP, BMP
// and TIFF.
//
// Previews are JPEGs whose longer side is at most Thumbnailer.MaxDimension.
// Images already within the bound are re-encoded without resizing; larger
// ones are scaled with nearest-neighbor sampling. A Thumbnail always reports
// the dimensions of the original image, not of the preview.
//
//	gen := imaging.NewGenerator(imaging.DefaultThumbnailer())
//	thumb, err := gen.Generate(data, "holiday/beach.jpg")
package imaging
