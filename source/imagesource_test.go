package source

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

func TestDecodeSingleImage(t *testing.T) {
	src, err := DecodeImage(encodePNG(t, testImage(40, 30)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.PageCount() != 1 {
		t.Errorf("page count = %d, want 1", src.PageCount())
	}
	w, h, err := src.PageSize(1)
	if err != nil || w != 40 || h != 30 {
		t.Errorf("page size = %gx%g (%v), want 40x30", w, h, err)
	}
}

func TestDecodeGIFFrames(t *testing.T) {
	var buf bytes.Buffer
	g := &gif.GIF{}
	for i := 0; i < 3; i++ {
		p := image.NewPaletted(image.Rect(0, 0, 20, 10), []color.Color{color.Black, color.White})
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, 10)
	}
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode gif: %v", err)
	}

	src, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.PageCount() != 3 {
		t.Errorf("page count = %d, want 3 (one per frame)", src.PageCount())
	}
}

func TestDecodeCorruptReportsLoadError(t *testing.T) {
	_, err := DecodeImage([]byte("not an image at all"))
	le, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("err = %T, want *LoadError", err)
	}
	if le.Kind != LoadCorrupt {
		t.Errorf("kind = %v, want corrupt", le.Kind)
	}
}

func TestRenderPageScales(t *testing.T) {
	src, err := NewImageSource(testImage(100, 50))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	surface, links, err := src.RenderPage(context.Background(), 1, 2.0, 0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if links != nil {
		t.Error("raster images must not carry link annotations")
	}
	if surface.Width() != 200 || surface.Height() != 100 {
		t.Errorf("surface = %dx%d, want 200x100", surface.Width(), surface.Height())
	}
}

func TestRenderPageRotates(t *testing.T) {
	src, err := NewImageSource(testImage(100, 50))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	for _, c := range []struct{ rotation, w, h int }{
		{0, 100, 50},
		{90, 50, 100},
		{180, 100, 50},
		{270, 50, 100},
	} {
		surface, _, err := src.RenderPage(context.Background(), 1, 1.0, c.rotation)
		if err != nil {
			t.Fatalf("render at %d: %v", c.rotation, err)
		}
		if surface.Width() != c.w || surface.Height() != c.h {
			t.Errorf("rotation %d: %dx%d, want %dx%d",
				c.rotation, surface.Width(), surface.Height(), c.w, c.h)
		}
	}
}

func TestRotationMovesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	src, _ := NewImageSource(img)

	surface, _, err := src.RenderPage(context.Background(), 1, 1.0, 90)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// Clockwise quarter turn: the left (red) pixel moves to the top.
	top := surface.Img.RGBAAt(0, 0)
	bottom := surface.Img.RGBAAt(0, 1)
	if top.R != 255 || bottom.B != 255 {
		t.Errorf("rotation misplaced pixels: top=%v bottom=%v", top, bottom)
	}
}

func TestRenderPageHonorsContext(t *testing.T) {
	src, _ := NewImageSource(testImage(10, 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := src.RenderPage(ctx, 1, 1.0, 0); err == nil {
		t.Error("canceled context did not stop render")
	}
}

func TestRenderPageValidatesInput(t *testing.T) {
	src, _ := NewImageSource(testImage(10, 10))
	if _, _, err := src.RenderPage(context.Background(), 2, 1.0, 0); err == nil {
		t.Error("out-of-range page accepted")
	}
	if _, _, err := src.RenderPage(context.Background(), 1, 0, 0); err == nil {
		t.Error("zero scale accepted")
	}
}
