// Package export produces a downloadable document artifact with the
// viewer's color treatment burned into the page pixels. Pages are
// rasterized at a fixed high-detail scale in their original
// orientation, run through the exact pixel transform, and assembled
// into a multi-page PDF that is only written out once every page has
// succeeded.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/duskview/duskview/colorize"
	"github.com/duskview/duskview/observability"
	"github.com/duskview/duskview/render"
)

// ExportScale is the fixed rasterization scale for exported pages.
// Higher than the typical on-screen scale so the artifact holds up
// when zoomed or printed.
const ExportScale = 2.0

// ProgressFunc receives the fraction of completed work in [0, 1].
type ProgressFunc func(fraction float64)

// Pipeline renders, filters, and assembles pages for export. Export is
// strict: any page failure aborts the whole run and no partial
// artifact is produced.
type Pipeline struct {
	source   render.Source
	settings colorize.Settings
	logger   observability.Logger
	tracer   observability.Tracer
	progress ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer attaches a tracer; one span covers the whole export.
func WithTracer(t observability.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithProgress registers a progress callback. It is invoked once per
// completed page with the overall completed fraction.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// NewPipeline builds an export pipeline over src with the given color
// settings.
func NewPipeline(src render.Source, settings colorize.Settings, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   src,
		settings: settings,
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export renders every page at ExportScale with no rotation, applies
// the pixel transform when dark mode is enabled, and writes the
// finished PDF to out. The artifact is assembled in memory first so a
// mid-run failure leaves out untouched.
func (p *Pipeline) Export(ctx context.Context, out io.Writer) error {
	start := time.Now()
	ctx, span := p.tracer.StartSpan(ctx, "export")
	defer span.Finish()

	total := p.source.PageCount()
	if total <= 0 {
		err := fmt.Errorf("export: document has no pages")
		span.SetError(err)
		return err
	}
	span.SetTag("pages", total)

	settings := p.settings
	settings = settings.Clamp()

	builder := newPDFBuilder()
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			span.SetError(err)
			return fmt.Errorf("export: canceled at page %d: %w", page, err)
		}
		if err := p.exportPage(ctx, builder, page, settings); err != nil {
			p.logger.Error("export aborted",
				observability.Int("page", page),
				observability.Error("error", err))
			span.SetError(err)
			return err
		}
		if p.progress != nil {
			p.progress(float64(page) / float64(total))
		}
	}

	data, err := builder.Bytes()
	if err != nil {
		span.SetError(err)
		return err
	}
	if _, err := out.Write(data); err != nil {
		span.SetError(err)
		return fmt.Errorf("export: write artifact: %w", err)
	}
	p.logger.Info("export complete",
		observability.Int("pages", total),
		observability.Int("bytes", len(data)),
		observability.Float64(observability.MetricExportTime, time.Since(start).Seconds()))
	return nil
}

func (p *Pipeline) exportPage(ctx context.Context, builder *pdfBuilder, page int, settings colorize.Settings) error {
	surface, _, err := p.source.RenderPage(ctx, page, ExportScale, 0)
	if err != nil {
		return fmt.Errorf("export: render page %d: %w", page, err)
	}
	if settings.DarkMode {
		if err := colorize.Apply(surface.Img, settings); err != nil {
			return fmt.Errorf("export: filter page %d: %w", page, err)
		}
	}
	widthPt, heightPt, err := p.source.PageSize(page)
	if err != nil {
		return fmt.Errorf("export: page %d size: %w", page, err)
	}
	if err := builder.AddPage(surface.Img, widthPt, heightPt); err != nil {
		return fmt.Errorf("export: page %d: %w", page, err)
	}
	return nil
}

// ExportBytes is a convenience wrapper returning the artifact in
// memory.
func (p *Pipeline) ExportBytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Export(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
