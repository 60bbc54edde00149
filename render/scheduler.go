package render

import (
	"context"
	"math"
	"sync"

	"github.com/duskview/duskview/coords"
	"github.com/duskview/duskview/observability"
	"github.com/duskview/duskview/recovery"
	"github.com/duskview/duskview/viewport"
)

// PageState is the lazy scheduler's per-page render state.
type PageState int

const (
	// Unrendered pages show a dimension-reserving placeholder.
	Unrendered PageState = iota
	// Rendering pages have one in-flight render; further visibility
	// triggers are ignored until it settles.
	Rendering
	// Rendered pages hold a bitmap valid for the current geometry.
	Rendered
	// Failed pages show an in-place error indicator. Failure is
	// per-page and does not abort the document.
	Failed
)

// PrefetchMargin is the extra band, in pixels, around the scrollable
// viewport within which pages count as visible. Rendering starts
// before a page actually scrolls on screen, masking render latency.
const PrefetchMargin = 200

// pageGap is the vertical spacing between stacked pages in scroll
// mode.
const pageGap = 16

// Scheduler drives continuous-scroll rendering: it owns one
// PagePipeline per page, reacts to (page, visible) events, and keeps
// the per-page state machine honest. It is decoupled from visibility
// detection; HandleScroll derives visibility from placeholder layout,
// but tests and embedders can feed HandleVisibility directly.
type Scheduler struct {
	source   Source
	logger   observability.Logger
	strategy recovery.Strategy

	onRendered func(page int, s *Surface)
	onFailed   func(page int, err error)

	mu        sync.Mutex
	pipelines []*PagePipeline
	states    []PageState
	geo       viewport.Geometry
	aborted   bool

	// Placeholder dimensions, derived from page 1 at the current
	// geometry so unrendered pages reserve their final on-screen size
	// and scrolling does not jump as pages render in.
	placeholderW float64
	placeholderH float64

	currentPage int
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger attaches a logger; the default is a nop.
func WithSchedulerLogger(l observability.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithStrategy overrides the failure policy. The default is lenient:
// a broken page shows an error state and the rest keeps rendering.
func WithStrategy(st recovery.Strategy) SchedulerOption {
	return func(s *Scheduler) { s.strategy = st }
}

// OnRendered registers a callback fired after a page commits its
// surface.
func OnRendered(fn func(page int, s *Surface)) SchedulerOption {
	return func(s *Scheduler) { s.onRendered = fn }
}

// OnFailed registers a callback fired when a page render fails with a
// non-cancellation error.
func OnFailed(fn func(page int, err error)) SchedulerOption {
	return func(s *Scheduler) { s.onFailed = fn }
}

// NewScheduler builds a scheduler for every page of src at the given
// starting geometry.
func NewScheduler(src Source, geo viewport.Geometry, opts ...SchedulerOption) *Scheduler {
	n := src.PageCount()
	s := &Scheduler{
		source:      src,
		logger:      observability.NopLogger{},
		strategy:    recovery.NewLenientStrategy(),
		pipelines:   make([]*PagePipeline, n),
		states:      make([]PageState, n),
		geo:         geo,
		currentPage: 1,
	}
	for i := 0; i < n; i++ {
		s.pipelines[i] = NewPagePipeline(src, i+1)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.derivePlaceholder()
	return s
}

func (s *Scheduler) derivePlaceholder() {
	w, h, err := s.source.PageSize(1)
	if err != nil || w <= 0 || h <= 0 {
		s.placeholderW, s.placeholderH = 0, 0
		return
	}
	s.placeholderW, s.placeholderH = coords.RotatedSize(s.geo.Scale, s.geo.Rotation, w, h)
}

// PlaceholderSize returns the on-screen dimensions every unrendered
// page reserves, derived from page 1 at the current geometry.
func (s *Scheduler) PlaceholderSize() (w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeholderW, s.placeholderH
}

// State returns the render state of a 1-based page.
func (s *Scheduler) State(page int) PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 || page > len(s.states) {
		return Unrendered
	}
	return s.states[page-1]
}

// Pipeline exposes the per-page pipeline, mainly for link hit testing
// on rendered pages.
func (s *Scheduler) Pipeline(page int) *PagePipeline {
	if page < 1 || page > len(s.pipelines) {
		return nil
	}
	return s.pipelines[page-1]
}

// Aborted reports whether the failure policy shut the scheduler down.
// Only a strict strategy aborts; the default lenient policy never
// does.
func (s *Scheduler) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// CurrentPage is the page whose bounds sit closest to the viewport's
// vertical center, per the latest HandleScroll.
func (s *Scheduler) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// SetGeometry invalidates every rendered page after a scale or
// rotation change. This is the only operation that re-renders all
// pages: cached bitmaps are stale the moment geometry moves.
func (s *Scheduler) SetGeometry(geo viewport.Geometry) {
	s.mu.Lock()
	s.geo = geo
	for i := range s.states {
		s.states[i] = Unrendered
		s.pipelines[i].Invalidate()
	}
	s.derivePlaceholder()
	s.mu.Unlock()
	s.logger.Debug("geometry changed, all pages invalidated",
		observability.Float64("scale", geo.Scale),
		observability.Int("rotation", geo.Rotation))
}

// HandleVisibility feeds one (page, visible) event. A visible
// unrendered (or failed) page starts rendering; duplicate triggers
// while it is Rendering or Rendered are ignored, which is what keeps
// rapid overlapping scroll events from scheduling redundant work.
// Leaving the margin evicts the page: an in-flight render is canceled
// and a rendered bitmap is released, so a page that re-enters the
// margin renders again.
func (s *Scheduler) HandleVisibility(ctx context.Context, page int, visible bool) {
	if page < 1 || page > len(s.pipelines) {
		return
	}
	if !visible {
		s.evict(page)
		return
	}

	s.mu.Lock()
	idx := page - 1
	if s.aborted || s.states[idx] == Rendering || s.states[idx] == Rendered {
		s.mu.Unlock()
		return
	}
	s.states[idx] = Rendering
	geo := s.geo
	pipeline := s.pipelines[idx]
	s.mu.Unlock()

	go s.run(ctx, pipeline, page, geo)
}

func (s *Scheduler) evict(page int) {
	s.mu.Lock()
	idx := page - 1
	switch s.states[idx] {
	case Rendering:
		// run() observes the cancellation and settles the state.
		s.pipelines[idx].Cancel()
	case Rendered:
		s.states[idx] = Unrendered
		s.pipelines[idx].Invalidate()
	}
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, pipeline *PagePipeline, page int, geo viewport.Geometry) {
	surface, err := pipeline.Render(ctx, geo)

	s.mu.Lock()
	idx := page - 1
	switch {
	case err == nil:
		// Commit only if geometry did not move underneath the render;
		// otherwise the pipeline already reported supersession.
		if s.geo == geo {
			s.states[idx] = Rendered
		}
	case IsCancellation(err):
		// Cancellation is not an error. The page stays or returns to
		// Unrendered so a later visibility event can retry.
		if s.states[idx] == Rendering {
			s.states[idx] = Unrendered
		}
	default:
		s.states[idx] = Failed
		if s.strategy.OnError(err, recovery.Location{Page: page, Component: "render"}) == recovery.ActionFail {
			s.aborted = true
		}
	}
	state := s.states[idx]
	s.mu.Unlock()

	switch {
	case err == nil && state == Rendered:
		if s.onRendered != nil {
			s.onRendered(page, surface)
		}
	case err != nil && !IsCancellation(err):
		s.logger.Error("page render failed",
			observability.Int("page", page),
			observability.Error("err", err))
		if s.onFailed != nil {
			s.onFailed(page, err)
		}
	}
}

// HandleScroll derives visibility events from the scroll position and
// retriggers rendering for every page inside the prefetch margin. It
// also recomputes the current page. Callers debounce this against
// high-frequency scroll events.
func (s *Scheduler) HandleScroll(ctx context.Context, scrollTop, viewportHeight float64) {
	first, last := s.VisibleRange(scrollTop, viewportHeight)
	for page := 1; page <= len(s.pipelines); page++ {
		s.HandleVisibility(ctx, page, page >= first && page <= last)
	}
	s.trackCurrentPage(scrollTop, viewportHeight)
}

// VisibleRange returns the inclusive 1-based page range whose
// placeholders intersect the viewport extended by PrefetchMargin.
func (s *Scheduler) VisibleRange(scrollTop, viewportHeight float64) (first, last int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pipelines)
	if n == 0 || s.placeholderH <= 0 {
		return 1, 0
	}
	stride := s.placeholderH + pageGap
	top := scrollTop - PrefetchMargin
	bottom := scrollTop + viewportHeight + PrefetchMargin

	first = int(math.Floor(top/stride)) + 1
	last = int(math.Floor(bottom/stride)) + 1
	if first < 1 {
		first = 1
	}
	if last > n {
		last = n
	}
	return first, last
}

func (s *Scheduler) trackCurrentPage(scrollTop, viewportHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pipelines)
	if n == 0 || s.placeholderH <= 0 {
		return
	}
	stride := s.placeholderH + pageGap
	center := scrollTop + viewportHeight/2

	best := 1
	bestDist := math.Inf(1)
	for page := 1; page <= n; page++ {
		pageCenter := float64(page-1)*stride + s.placeholderH/2
		if d := math.Abs(pageCenter - center); d < bestDist {
			bestDist = d
			best = page
		}
	}
	s.currentPage = best
}
