package viewport

import (
	"github.com/duskview/duskview/observability"
)

// Controller owns scale, rotation, fit mode and page position for one
// open document. It is synchronous and not goroutine-safe: all calls
// are expected to arrive on the embedding event loop.
type Controller struct {
	scale    float64
	rotation int
	fit      FitMode

	currentPage int
	totalPages  int

	// Unscaled dimensions of the reference page (page 1), used by the
	// fit computations.
	pageW, pageH float64

	// Container client dimensions in pixels.
	containerW, containerH float64

	minScale, maxScale float64

	logger observability.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger; the default is a nop.
func WithLogger(l observability.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithScaleBounds overrides the zoom clamp range. Image-only viewing
// historically allowed looser bounds than paginated documents.
func WithScaleBounds(min, max float64) Option {
	return func(c *Controller) {
		if min > 0 && max >= min {
			c.minScale, c.maxScale = min, max
		}
	}
}

// NewController returns a controller at scale 1.0, unrotated, in
// manual fit mode, with no document loaded.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		scale:    1.0,
		fit:      FitManual,
		minScale: MinScale,
		maxScale: MaxScale,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDocument installs a freshly loaded document: its page count and
// the unscaled dimensions of its first page. Resets to page 1.
func (c *Controller) SetDocument(totalPages int, pageW, pageH float64) {
	c.totalPages = totalPages
	c.pageW, c.pageH = pageW, pageH
	c.currentPage = 0
	if totalPages > 0 {
		c.currentPage = 1
	}
	c.logger.Info("document set",
		observability.Int("pages", totalPages),
		observability.Float64("pageWidth", pageW),
		observability.Float64("pageHeight", pageH))
}

// Resize records new container client dimensions. While a fit mode is
// active the scale is rederived immediately; manual scale is left
// alone. Callers wire this through a debouncer (around 100ms) so a
// live window drag does not recompute on every intermediate size.
func (c *Controller) Resize(w, h float64) {
	c.containerW, c.containerH = w, h
	switch c.fit {
	case FitWidth:
		c.FitToWidth()
	case FitHeight:
		c.FitToHeight()
	}
}

// Geometry returns the snapshot renders must capture before starting.
func (c *Controller) Geometry() Geometry {
	return Geometry{Scale: c.scale, Rotation: c.rotation}
}

// State returns the full viewport state.
func (c *Controller) State() State {
	return State{
		Scale:       c.scale,
		Rotation:    c.rotation,
		Fit:         c.fit,
		CurrentPage: c.currentPage,
		TotalPages:  c.totalPages,
	}
}

func (c *Controller) Scale() float64   { return c.scale }
func (c *Controller) Rotation() int    { return c.rotation }
func (c *Controller) Fit() FitMode     { return c.fit }
func (c *Controller) CurrentPage() int { return c.currentPage }
func (c *Controller) TotalPages() int  { return c.totalPages }

// ZoomIn raises the scale by one step. Relative zoom always drops any
// active fit mode.
func (c *Controller) ZoomIn() {
	c.setManualScale(c.scale + ZoomStep)
}

// ZoomOut lowers the scale by one step and drops any active fit mode.
func (c *Controller) ZoomOut() {
	c.setManualScale(c.scale - ZoomStep)
}

// SetScale jumps to an absolute scale, clamped, in manual mode.
func (c *Controller) SetScale(s float64) {
	c.setManualScale(s)
}

// ApplyPinch multiplies the scale by factor (the ratio of current to
// initial pointer distance in a two-finger gesture).
func (c *Controller) ApplyPinch(factor float64) {
	if factor <= 0 {
		return
	}
	c.setManualScale(c.scale * factor)
}

func (c *Controller) setManualScale(s float64) {
	c.scale = clampScale(s, c.minScale, c.maxScale)
	c.fit = FitManual
}

// effectivePageSize returns the unscaled page dimensions as laid out
// under the current rotation: quarter turns swap width and height.
func (c *Controller) effectivePageSize() (w, h float64) {
	if c.rotation%180 == 90 {
		return c.pageH, c.pageW
	}
	return c.pageW, c.pageH
}

// FitToWidth derives the scale from the container width. The result
// depends only on container and page geometry, never on the prior
// scale, so repeated fits are idempotent.
func (c *Controller) FitToWidth() {
	c.fit = FitWidth
	w, _ := c.effectivePageSize()
	if w <= 0 || c.containerW <= 0 {
		return
	}
	c.scale = clampScale((c.containerW-fitPadding)/w, c.minScale, c.maxScale)
}

// FitToHeight derives the scale from the container height.
func (c *Controller) FitToHeight() {
	c.fit = FitHeight
	_, h := c.effectivePageSize()
	if h <= 0 || c.containerH <= 0 {
		return
	}
	c.scale = clampScale((c.containerH-fitPadding)/h, c.minScale, c.maxScale)
}

// Rotate advances the rotation by 90 degrees. Rotation changes the
// rendered pixel dimensions, so callers must re-render every page.
func (c *Controller) Rotate() {
	c.rotation = (c.rotation + 90) % 360
	// A quarter turn swaps the fit axis dimension.
	switch c.fit {
	case FitWidth:
		c.FitToWidth()
	case FitHeight:
		c.FitToHeight()
	}
}

// GoToPage moves to page n. Out-of-range requests are a no-op rather
// than an error.
func (c *Controller) GoToPage(n int) {
	if n < 1 || n > c.totalPages {
		return
	}
	c.currentPage = n
}

// NextPage advances one page, saturating at the last page.
func (c *Controller) NextPage() { c.GoToPage(c.currentPage + 1) }

// PrevPage steps back one page, saturating at page 1.
func (c *Controller) PrevPage() { c.GoToPage(c.currentPage - 1) }

// SetCurrentPage records the page the scroll tracker determined to be
// closest to the viewport center. Unlike GoToPage it does not imply a
// jump; it only updates the counter.
func (c *Controller) SetCurrentPage(n int) {
	if n < 1 || n > c.totalPages {
		return
	}
	c.currentPage = n
}
