// Package ocr defines the text-recognition contract the viewer uses to
// extract text from rendered pages, plus a driver that walks a
// document page by page. Providers plug in through Engine; the
// gosseract-backed default lives in ocr/tesseract.
package ocr

import (
	"context"
	"fmt"

	"github.com/duskview/duskview/render"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Region describes a rectangular area in pixel coordinates with the
// origin in the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input encapsulates a single page image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded payload in the format declared by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// Page is the 1-based page the image was rendered from.
	Page int
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists trained-data hints (e.g. "eng", "deu").
	Languages []string
	// Region restricts recognition to a subsection of the image. Nil
	// processes the full image.
	Region *Region
	// Metadata passes engine-specific knobs through without
	// hard-coding them into the API surface.
	Metadata map[string]string

	// progress is only meaningful for document-level runs.
	progress func(fraction float64)
}

// Word is a single recognized token with its pixel bounds.
type Word struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// Result captures recognition output for one page image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// Page mirrors Input.Page.
	Page int
	// PlainText is the linearized text extracted from the image.
	PlainText string
	// Words carries per-token positions and confidences.
	Words []Word
	// Language is the dominant language detected, if known.
	Language string
}

// Engine is the provider contract: one page image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the registered default engine. It is the
// Tesseract adapter when ocr/tesseract is linked in, otherwise a no-op.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine replaces the default engine.
func SetDefaultEngine(engine Engine) { defaultEngine = engine }

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID, Page: in.Page}, nil
}

// recognizeScale renders pages for OCR at a detail level that gives
// Tesseract enough pixels to work with.
const recognizeScale = 2.0

// RecognizeDocument renders every page of src at OCR detail, feeds it
// to engine, and returns one Result per page. The progress option, if
// set, receives the completed fraction after each page. Any page
// failure aborts the run.
func RecognizeDocument(ctx context.Context, engine Engine, src render.Source, opts ...InputOption) ([]Result, error) {
	cfg := collectRunOptions(opts)
	total := src.PageCount()
	results := make([]Result, 0, total)
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		surface, _, err := src.RenderPage(ctx, page, recognizeScale, 0)
		if err != nil {
			return nil, fmt.Errorf("ocr: render page %d: %w", page, err)
		}
		in, err := InputFromSurface(surface, page, opts...)
		if err != nil {
			return nil, fmt.Errorf("ocr: page %d: %w", page, err)
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("ocr: recognize page %d: %w", page, err)
		}
		results = append(results, res)
		if cfg.progress != nil {
			cfg.progress(float64(page) / float64(total))
		}
	}
	return results, nil
}
