package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/duskview/duskview/observability"
	"github.com/duskview/duskview/viewport"
)

var (
	// ErrCanceled marks a render torn down by its own context. It is
	// cooperative-cancellation noise, not a failure, and must never be
	// surfaced to the user.
	ErrCanceled = errors.New("render: canceled")
	// ErrSuperseded marks a render that lost to a newer request for the
	// same page. Like ErrCanceled it is swallowed, never surfaced.
	ErrSuperseded = errors.New("render: superseded by newer request")
)

// IsCancellation reports whether err is cancellation noise (superseded
// or canceled render) as opposed to a real render failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, ErrSuperseded) ||
		errors.Is(err, context.Canceled)
}

// PagePipeline manages rendering for a single page. At most one render
// is live at any time: a new request bumps the page's generation
// token, cancels the in-flight render, and takes ownership of the page
// slot. A completed render commits its surface only if its token still
// matches, which makes supersession race-safe without tracking task
// pointers.
type PagePipeline struct {
	page   int
	source Source
	logger observability.Logger
	tracer observability.Tracer

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	surface    *Surface
	annots     []LinkAnnotation
}

// PipelineOption configures a PagePipeline.
type PipelineOption func(*PagePipeline)

// WithPipelineLogger attaches a logger; the default is a nop.
func WithPipelineLogger(l observability.Logger) PipelineOption {
	return func(p *PagePipeline) { p.logger = l }
}

// WithPipelineTracer attaches a tracer; the default is a nop.
func WithPipelineTracer(t observability.Tracer) PipelineOption {
	return func(p *PagePipeline) { p.tracer = t }
}

// NewPagePipeline creates a pipeline for the 1-based page of src.
func NewPagePipeline(src Source, page int, opts ...PipelineOption) *PagePipeline {
	p := &PagePipeline{
		page:   page,
		source: src,
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page returns the 1-based page number this pipeline owns.
func (p *PagePipeline) Page() int { return p.page }

// Render rasterizes the page at the geometry snapshot, cancelling and
// superseding any in-flight render of the same page. The returned
// surface is committed to the page slot together with freshly
// projected link annotations. Superseded or canceled renders return
// ErrSuperseded/ErrCanceled, which callers filter with IsCancellation.
func (p *PagePipeline) Render(ctx context.Context, geo viewport.Geometry) (*Surface, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	if p.cancel != nil {
		p.cancel()
	}
	renderCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	spanCtx, span := p.tracer.StartSpan(renderCtx, "render.page")
	span.SetTag("page", p.page)
	span.SetTag("scale", geo.Scale)
	defer span.Finish()

	surface, refs, err := p.source.RenderPage(spanCtx, p.page, geo.Scale, geo.Rotation)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.Debug("render canceled", observability.Int("page", p.page))
			return nil, ErrCanceled
		}
		span.SetError(err)
		return nil, fmt.Errorf("render page %d: %w", p.page, err)
	}

	pageW, pageH, err := p.source.PageSize(p.page)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("page %d size: %w", p.page, err)
	}
	annots := projectLinks(refs, geo.Scale, geo.Rotation, pageW, pageH, p.source)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		// A later render owns the slot now; this result is stale and
		// must not be committed.
		return nil, ErrSuperseded
	}
	p.surface = surface
	p.annots = annots
	p.cancel = nil
	return surface, nil
}

// Cancel tears down any in-flight render without starting a new one.
func (p *PagePipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Surface returns the last committed surface, or nil before the first
// successful render.
func (p *PagePipeline) Surface() *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface
}

// Annotations returns the link annotations of the current render
// generation.
func (p *PagePipeline) Annotations() []LinkAnnotation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.annots
}

// Invalidate drops the committed surface and annotations, forcing the
// next render to start from scratch. Used when global geometry
// changes.
func (p *PagePipeline) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.surface = nil
	p.annots = nil
}

// LinkAt returns the annotation containing the viewport-space point,
// if any.
func (p *PagePipeline) LinkAt(x, y float64) (LinkAnnotation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.annots {
		if a.Bounds.Contains(x, y) {
			return a, true
		}
	}
	return LinkAnnotation{}, false
}
