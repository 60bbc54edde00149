package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg" // register decoders for image viewing
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/duskview/duskview/coords"
	"github.com/duskview/duskview/render"
)

// ImageSource adapts one or more static raster frames to the
// render.Source contract so the viewer treats images and document
// pages uniformly. A multi-frame GIF exposes each frame as a page;
// every other format is a single page. Images carry no link
// annotations.
type ImageSource struct {
	frames []*image.RGBA
}

// NewImageSource wraps already-decoded frames.
func NewImageSource(frames ...image.Image) (*ImageSource, error) {
	if len(frames) == 0 {
		return nil, errors.New("source: no image frames")
	}
	s := &ImageSource{frames: make([]*image.RGBA, len(frames))}
	for i, f := range frames {
		s.frames[i] = toRGBA(f)
	}
	return s, nil
}

// DecodeImage builds an ImageSource from encoded bytes. GIF payloads
// are decoded frame by frame; anything else goes through the
// registered stdlib decoders as a single frame.
func DecodeImage(data []byte) (*ImageSource, error) {
	if len(data) == 0 {
		return nil, errors.New("source: empty image data")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Err: fmt.Errorf("decode image config: %w", err)}
	}
	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, &LoadError{Kind: LoadCorrupt, Err: fmt.Errorf("decode gif: %w", err)}
		}
		frames := make([]image.Image, len(g.Image))
		for i, f := range g.Image {
			frames[i] = f
		}
		return NewImageSource(frames...)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Err: fmt.Errorf("decode image: %w", err)}
	}
	return NewImageSource(img)
}

// PageCount reports the number of frames.
func (s *ImageSource) PageCount() int { return len(s.frames) }

// PageSize returns the unscaled frame dimensions.
func (s *ImageSource) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > len(s.frames) {
		return 0, 0, fmt.Errorf("source: page %d out of range [1,%d]", page, len(s.frames))
	}
	b := s.frames[page-1].Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

// RenderPage resamples the frame to the requested scale and applies
// the quadrant rotation. Scaling uses the bilinear kernel, which is
// the quality/speed tradeoff live viewing wants; export re-renders at
// its own fixed scale anyway.
func (s *ImageSource) RenderPage(ctx context.Context, page int, scale float64, rotation int) (*render.Surface, []render.LinkRef, error) {
	if page < 1 || page > len(s.frames) {
		return nil, nil, fmt.Errorf("source: page %d out of range [1,%d]", page, len(s.frames))
	}
	if scale <= 0 {
		return nil, nil, fmt.Errorf("source: invalid scale %g", scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	frame := s.frames[page-1]
	b := frame.Bounds()
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), frame, b, xdraw.Src, nil)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rotated := rotateQuadrant(scaled, rotation)
	return &render.Surface{Img: rotated, Scale: scale, Rotation: rotation}, nil, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

// rotateQuadrant remaps pixels for rotations that are multiples of 90
// degrees. Rotation here is clockwise, matching viewer conventions.
func rotateQuadrant(src *image.RGBA, rotation int) *image.RGBA {
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}
	if rotation == 0 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if rotation%180 == 90 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(x, y)
			var do int
			switch rotation {
			case 90:
				do = dst.PixOffset(h-1-y, x)
			case 180:
				do = dst.PixOffset(w-1-x, h-1-y)
			case 270:
				do = dst.PixOffset(y, w-1-x)
			}
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// RotatedBounds reports the pixel dimensions RenderPage will produce
// for the given geometry without rendering.
func (s *ImageSource) RotatedBounds(page int, scale float64, rotation int) (int, int, error) {
	w, h, err := s.PageSize(page)
	if err != nil {
		return 0, 0, err
	}
	rw, rh := coords.RotatedSize(scale, rotation, w, h)
	return int(rw + 0.5), int(rh + 0.5), nil
}
