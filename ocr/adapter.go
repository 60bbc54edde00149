package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/duskview/duskview/render"
)

// InputFromSurface converts a rendered page surface into an OCR input
// using PNG encoding. The generated ID is stable per page so callers
// can correlate results.
func InputFromSurface(surface *render.Surface, page int, opts ...InputOption) (Input, error) {
	if surface == nil || surface.Img == nil {
		return Input{}, fmt.Errorf("ocr: nil surface for page %d", page)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, surface.Img); err != nil {
		return Input{}, fmt.Errorf("ocr: encode page %d: %w", page, err)
	}
	in := Input{
		ID:     fmt.Sprintf("page-%d", page),
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
		Page:   page,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
