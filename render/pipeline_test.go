package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
	"testing"

	"github.com/duskview/duskview/coords"
	"github.com/duskview/duskview/viewport"
)

// fakeSource is a synchronous in-memory Source with controllable
// blocking and failure behavior standing in for the decoding library.
type fakeSource struct {
	pages int
	w, h  float64

	mu      sync.Mutex
	renders map[int]int

	// block, when non-nil, makes RenderPage wait until the channel is
	// closed or the context is canceled.
	block chan struct{}

	failPages map[int]error
	links     map[int][]LinkRef
	dests     map[string]int
}

func newFakeSource(pages int) *fakeSource {
	return &fakeSource{
		pages:   pages,
		w:       600,
		h:       800,
		renders: make(map[int]int),
	}
}

func (f *fakeSource) PageCount() int { return f.pages }

func (f *fakeSource) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > f.pages {
		return 0, 0, fmt.Errorf("page %d out of range", page)
	}
	return f.w, f.h, nil
}

func (f *fakeSource) RenderPage(ctx context.Context, page int, scale float64, rotation int) (*Surface, []LinkRef, error) {
	f.mu.Lock()
	f.renders[page]++
	block := f.block
	err := f.failPages[page]
	links := f.links[page]
	f.mu.Unlock()

	if err != nil {
		return nil, nil, err
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	w, h := coords.RotatedSize(scale, rotation, f.w, f.h)
	return &Surface{
		Img:      image.NewRGBA(image.Rect(0, 0, int(w), int(h))),
		Scale:    scale,
		Rotation: rotation,
	}, links, nil
}

func (f *fakeSource) ResolveDest(name string) (int, bool) {
	page, ok := f.dests[name]
	return page, ok
}

func (f *fakeSource) renderCount(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders[page]
}

func TestRenderCommitsSurface(t *testing.T) {
	src := newFakeSource(3)
	p := NewPagePipeline(src, 1)

	surface, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if surface.Width() != 900 || surface.Height() != 1200 {
		t.Errorf("surface %dx%d, want 900x1200", surface.Width(), surface.Height())
	}
	if p.Surface() != surface {
		t.Error("surface not committed to the page slot")
	}
}

func TestRotatedRenderDimensions(t *testing.T) {
	src := newFakeSource(1)
	p := NewPagePipeline(src, 1)

	surface, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0, Rotation: 90})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if surface.Width() != 800 || surface.Height() != 600 {
		t.Errorf("rotated surface %dx%d, want 800x600", surface.Width(), surface.Height())
	}
}

func TestSupersededRenderIsDiscarded(t *testing.T) {
	src := newFakeSource(1)
	src.block = make(chan struct{})
	p := NewPagePipeline(src, 1)

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0})
		firstErr <- err
	}()

	// Wait for the first render to be in flight.
	for src.renderCount(1) == 0 {
		runtime.Gosched()
	}

	src.mu.Lock()
	src.block = nil
	src.mu.Unlock()

	surface, err := p.Render(context.Background(), viewport.Geometry{Scale: 2.0})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if got := <-firstErr; !IsCancellation(got) {
		t.Errorf("first render err = %v, want cancellation", got)
	}
	if p.Surface() != surface {
		t.Error("stale render overwrote the newer surface")
	}
	if p.Surface().Scale != 2.0 {
		t.Errorf("committed scale = %g, want 2.0", p.Surface().Scale)
	}
}

func TestCanceledRenderReturnsErrCanceled(t *testing.T) {
	src := newFakeSource(1)
	src.block = make(chan struct{})
	p := NewPagePipeline(src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Render(ctx, viewport.Geometry{Scale: 1.0})
		done <- err
	}()
	for src.renderCount(1) == 0 {
		runtime.Gosched()
	}
	cancel()

	err := <-done
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("err = %v, want ErrCanceled", err)
	}
	if !IsCancellation(err) {
		t.Error("ErrCanceled must classify as cancellation")
	}
}

func TestRenderFailureIsFatalForPage(t *testing.T) {
	src := newFakeSource(1)
	src.failPages = map[int]error{1: errors.New("rasterizer exploded")}
	p := NewPagePipeline(src, 1)

	_, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsCancellation(err) {
		t.Error("real failure classified as cancellation")
	}
	if p.Surface() != nil {
		t.Error("failed render committed a surface")
	}
}

func TestLinkProjection(t *testing.T) {
	src := newFakeSource(5)
	src.links = map[int][]LinkRef{1: {
		{Rect: coords.Rect{MinX: 10, MinY: 20, MaxX: 110, MaxY: 70}, URI: "https://example.com"},
		{Rect: coords.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50}, DestPage: 3},
		{Rect: coords.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50}, DestName: "chapter-2"},
		{Rect: coords.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50}, DestName: "missing"},
	}}
	src.dests = map[string]int{"chapter-2": 4}
	p := NewPagePipeline(src, 1)

	if _, err := p.Render(context.Background(), viewport.Geometry{Scale: 2.0}); err != nil {
		t.Fatalf("render: %v", err)
	}
	annots := p.Annotations()
	if len(annots) != 3 {
		t.Fatalf("got %d annotations, want 3 (unresolvable dest dropped)", len(annots))
	}

	ext, ok := annots[0].Target.(ExternalTarget)
	if !ok || ext.URL != "https://example.com" {
		t.Errorf("annotation 0 target = %#v", annots[0].Target)
	}
	if got := annots[0].Bounds; math.Abs(got.MinX-20) > 1e-9 || math.Abs(got.MaxY-140) > 1e-9 {
		t.Errorf("annotation 0 bounds = %+v, want scaled by 2", got)
	}

	if in, ok := annots[1].Target.(InternalTarget); !ok || in.Page != 3 {
		t.Errorf("annotation 1 target = %#v, want internal page 3", annots[1].Target)
	}
	if in, ok := annots[2].Target.(InternalTarget); !ok || in.Page != 4 {
		t.Errorf("annotation 2 target = %#v, want resolved page 4", annots[2].Target)
	}
}

func TestAnnotationsFollowRotation(t *testing.T) {
	src := newFakeSource(1)
	src.links = map[int][]LinkRef{1: {
		{Rect: coords.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}, URI: "https://example.com"},
	}}
	p := NewPagePipeline(src, 1)

	if _, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0, Rotation: 90}); err != nil {
		t.Fatalf("render: %v", err)
	}
	b := p.Annotations()[0].Bounds
	// Under a 90 degree turn the link lands at the top-right of the
	// rotated page (page height 800 becomes the x extent).
	if math.Abs(b.MinX-750) > 1e-9 || math.Abs(b.MaxX-800) > 1e-9 {
		t.Errorf("rotated bounds x = [%g,%g], want [750,800]", b.MinX, b.MaxX)
	}
	if math.Abs(b.MinY-0) > 1e-9 || math.Abs(b.MaxY-100) > 1e-9 {
		t.Errorf("rotated bounds y = [%g,%g], want [0,100]", b.MinY, b.MaxY)
	}
}

func TestLinkAt(t *testing.T) {
	src := newFakeSource(1)
	src.links = map[int][]LinkRef{1: {
		{Rect: coords.Rect{MinX: 10, MinY: 10, MaxX: 60, MaxY: 40}, DestPage: 2},
	}}
	p := NewPagePipeline(src, 1)
	if _, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, ok := p.LinkAt(30, 20); !ok {
		t.Error("point inside annotation not hit")
	}
	if _, ok := p.LinkAt(200, 200); ok {
		t.Error("point outside annotation hit")
	}
}

func TestInvalidateDropsState(t *testing.T) {
	src := newFakeSource(1)
	p := NewPagePipeline(src, 1)
	if _, err := p.Render(context.Background(), viewport.Geometry{Scale: 1.0}); err != nil {
		t.Fatalf("render: %v", err)
	}
	p.Invalidate()
	if p.Surface() != nil || p.Annotations() != nil {
		t.Error("invalidate left stale surface or annotations")
	}
}
