package normalizer

import (
	"bytes"
	"context"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/mhpenta/tryon"
)

// Direction is a user-facing quarter-turn.
type Direction int

const (
	Left  Direction = -1 // counter-clockwise
	Right Direction = 1  // clockwise
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// jpegQuality matches the default quality of browser canvas encoders.
const jpegQuality = 92

// NormalizeQuarters maps any integer quarter-turn count into 0..3.
func NormalizeQuarters(q int) int {
	return ((q % 4) + 4) % 4
}

// Prepare decodes f, rotates it clockwise by quarters×90° and re-encodes it in
// the source format. A rotation of 0 is still re-encoded.
func Prepare(ctx context.Context, f File, quarters int) (tryon.PreparedImage, error) {
	if !tryon.IsImageMediaType(f.MediaType) {
		return tryon.PreparedImage{}, tryon.NewUnsupportedMediaType(f.MediaType)
	}
	if err := ctx.Err(); err != nil {
		return tryon.PreparedImage{}, err
	}

	src, err := imaging.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return tryon.PreparedImage{}, tryon.NewDecodeFailed(err)
	}
	if src.Bounds().Empty() {
		return tryon.PreparedImage{}, tryon.NewRasterUnavailable("image has no pixels", nil)
	}

	if err := ctx.Err(); err != nil {
		return tryon.PreparedImage{}, err
	}

	out := rotate(src, NormalizeQuarters(quarters))

	format, mimeType := encoderFor(f.MediaType)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return tryon.PreparedImage{}, tryon.NewRasterUnavailable("encoding "+mimeType, err)
	}

	if err := ctx.Err(); err != nil {
		return tryon.PreparedImage{}, err
	}

	return tryon.NewPreparedImage(buf.Bytes(), mimeType), nil
}

// rotate returns a new raster turned clockwise by q quarter-turns; odd q swaps
// width and height.
func rotate(src image.Image, q int) *image.NRGBA {
	switch q {
	case 1:
		return imaging.Rotate270(src) // 270° counter-clockwise
	case 2:
		return imaging.Rotate180(src)
	case 3:
		return imaging.Rotate90(src)
	default:
		return imaging.Clone(src)
	}
}

// encoderFor picks the output format for a source media type. Sources without
// a Go encoder (WebP) are published as PNG.
func encoderFor(mediaType string) (imaging.Format, string) {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return imaging.JPEG, "image/jpeg"
	case "image/gif":
		return imaging.GIF, "image/gif"
	case "image/bmp", "image/x-ms-bmp":
		return imaging.BMP, "image/bmp"
	case "image/tiff":
		return imaging.TIFF, "image/tiff"
	default:
		return imaging.PNG, "image/png"
	}
}
