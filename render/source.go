package render

import (
	"context"
	"image"

	"github.com/duskview/duskview/coords"
)

// Surface is an owned drawable bitmap holding exactly one page or image
// frame rendered at a specific geometry. Surfaces are never shared
// between concurrent renders of the same page; a new render allocates a
// new surface and the old one is dropped wholesale.
type Surface struct {
	Img      *image.RGBA
	Scale    float64
	Rotation int
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.Img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.Img.Bounds().Dy() }

// LinkRef is a raw link descriptor attached to a page by the document
// source. Rect is in unscaled page space. Exactly one of URI and
// DestName/DestPage identifies the target: URI for external links,
// DestPage (1-based) or DestName (resolved through the source's
// destination table) for internal ones.
type LinkRef struct {
	Rect     coords.Rect
	URI      string
	DestName string
	DestPage int
}

// Source rasterizes document pages. It abstracts the decoding library:
// paginated vector documents and static raster images both satisfy it.
//
// RenderPage must honor ctx cancellation and is the only suspending
// operation in the viewer; everything layered above it is synchronous.
type Source interface {
	// PageCount reports the number of renderable pages (or frames).
	PageCount() int
	// PageSize returns the unscaled dimensions of a 1-based page.
	PageSize(pageNum int) (w, h float64, err error)
	// RenderPage rasterizes the 1-based page at the given scale and
	// quadrant rotation, returning the surface and any raw link
	// descriptors found on the page.
	RenderPage(ctx context.Context, pageNum int, scale float64, rotation int) (*Surface, []LinkRef, error)
}

// DestResolver is an optional Source capability: resolving named
// internal destinations to 1-based page numbers.
type DestResolver interface {
	ResolveDest(name string) (pageNum int, ok bool)
}
