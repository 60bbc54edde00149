package ocr

import "strconv"

// InputOption mutates an OCR input generated from a rendered page, or
// configures the document-level run.
type InputOption func(*Input)

// WithProgress registers a callback receiving the completed fraction
// in [0, 1] after each page of a document run. It has no effect on a
// single Recognize call.
func WithProgress(fn func(fraction float64)) InputOption {
	return func(in *Input) { in.progress = fn }
}

type runConfig struct {
	progress func(fraction float64)
}

func collectRunOptions(opts []InputOption) runConfig {
	var probe Input
	for _, opt := range opts {
		opt(&probe)
	}
	return runConfig{progress: probe.progress}
}

// WithLanguages sets trained-data language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion restricts recognition to a subsection of the page image.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific variables for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			return
		}
		if in.Metadata == nil {
			in.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the page segmentation mode variable for
// Tesseract.
func WithTesseractPSM(mode int) InputOption {
	return WithMetadata(map[string]string{"tessedit_pageseg_mode": strconv.Itoa(mode)})
}

// WithTesseractWhitelist restricts recognition to the given characters.
func WithTesseractWhitelist(chars string) InputOption {
	return WithMetadata(map[string]string{"tessedit_char_whitelist": chars})
}
