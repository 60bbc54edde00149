// Command duskview loads a raster document (PNG, JPEG, or animated
// GIF) from a file or URL, applies the dark-mode color treatment, and
// exports the result as a multi-page PDF. It can also run OCR over the
// pages and remembers the last-used state per document.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/duskview/duskview/colorize"
	"github.com/duskview/duskview/export"
	"github.com/duskview/duskview/ocr"
	_ "github.com/duskview/duskview/ocr/tesseract"
	"github.com/duskview/duskview/render"
	"github.com/duskview/duskview/scripting"
	"github.com/duskview/duskview/session"
	"github.com/duskview/duskview/source"
)

type options struct {
	input       string
	output      string
	ocrText     bool
	languages   string
	preset      string
	query       string
	sessionPath string
	settings    colorize.Settings
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "duskview: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "duskview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: duskview [flags] <file-or-url>\n")
		flag.PrintDefaults()
	}
	def := colorize.DefaultSettings()
	output := flag.String("o", "duskview.pdf", "Output PDF path")
	dark := flag.Bool("dark", def.DarkMode, "Enable the dark-mode transform")
	preserve := flag.Bool("preserve", def.PreserveColor, "Preserve hues through the inversion")
	invert := flag.Int("invert", def.Inversion, "Inversion strength [0,100]")
	brightness := flag.Int("brightness", def.Brightness, "Brightness [0,300]")
	contrast := flag.Int("contrast", def.Contrast, "Contrast [0,300]")
	sepia := flag.Int("sepia", def.Sepia, "Sepia [0,100]")
	preset := flag.String("preset", "", "Path to a JavaScript filter preset; overrides the slider flags")
	query := flag.String("state", "", "Viewer state as a URL query string (e.g. \"invert=80&sepia=0\")")
	ocrText := flag.Bool("ocr", false, "Run OCR over the pages and print the recognized text")
	languages := flag.String("lang", "eng", "Comma-separated OCR language hints")
	sessionPath := flag.String("sessions", defaultSessionPath(), "Session store path (empty disables persistence)")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing input file or URL")
	}
	opts.input = flag.Arg(0)
	opts.output = *output
	opts.ocrText = *ocrText
	opts.languages = *languages
	opts.preset = *preset
	opts.query = *query
	opts.sessionPath = *sessionPath
	opts.settings = colorize.Settings{
		DarkMode:      *dark,
		PreserveColor: *preserve,
		Inversion:     *invert,
		Brightness:    *brightness,
		Contrast:      *contrast,
		Sepia:         *sepia,
	}
	opts.settings = opts.settings.Clamp()
	return opts, nil
}

func defaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "duskview", "sessions.json")
}

func run(ctx context.Context, opts options) error {
	doc, err := loadInput(ctx, opts.input)
	if err != nil {
		return err
	}
	src := doc.Source
	fmt.Printf("loaded %s: %d page(s)\n", opts.input, src.PageCount())

	settings, err := resolveSettings(ctx, opts)
	if err != nil {
		return err
	}

	if opts.ocrText {
		if err := runOCR(ctx, src, opts.languages); err != nil {
			return err
		}
	}

	if err := exportPDF(ctx, src, settings, opts.output); err != nil {
		return err
	}

	if opts.sessionPath != "" {
		if err := saveSession(opts.sessionPath, doc.Fingerprint, settings); err != nil {
			fmt.Fprintf(os.Stderr, "duskview: session not saved: %v\n", err)
		}
	}
	return nil
}

func loadInput(ctx context.Context, input string) (*source.Document, error) {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return source.FromURL(ctx, source.NewFetcher(), input, nil)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	return source.FromBytes(data, nil)
}

// resolveSettings layers the three configuration surfaces: slider
// flags, then a state query string, then a preset script.
func resolveSettings(ctx context.Context, opts options) (colorize.Settings, error) {
	settings := opts.settings
	if opts.query != "" {
		values, err := url.ParseQuery(opts.query)
		if err != nil {
			return colorize.Settings{}, fmt.Errorf("parse -state: %w", err)
		}
		settings = session.ParseQuery(values).Settings
	}
	if opts.preset != "" {
		script, err := os.ReadFile(opts.preset)
		if err != nil {
			return colorize.Settings{}, fmt.Errorf("read preset: %w", err)
		}
		settings, err = scripting.NewEngine().EvalPreset(ctx, string(script))
		if err != nil {
			return colorize.Settings{}, err
		}
	}
	return settings, nil
}

func runOCR(ctx context.Context, src render.Source, languages string) error {
	langs := strings.Split(languages, ",")
	results, err := ocr.RecognizeDocument(ctx, ocr.DefaultEngine(), src,
		ocr.WithLanguages(langs...),
		ocr.WithProgress(func(f float64) {
			fmt.Printf("\rocr: %3.0f%%", f*100)
		}))
	if err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	for _, res := range results {
		fmt.Printf("--- page %d ---\n%s\n", res.Page, res.PlainText)
	}
	return nil
}

func exportPDF(ctx context.Context, src render.Source, settings colorize.Settings, output string) error {
	pipeline := export.NewPipeline(src, settings,
		export.WithProgress(func(f float64) {
			fmt.Printf("\rexport: %3.0f%%", f*100)
		}))
	data, err := pipeline.ExportBytes(ctx)
	if err != nil {
		fmt.Println()
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		fmt.Println()
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("\rwrote %s (%d bytes)\n", output, len(data))
	return nil
}

func saveSession(path, fingerprint string, settings colorize.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	store, err := session.NewStore(session.NewFileBackend(path))
	if err != nil {
		return err
	}
	return store.Put(fingerprint, 1, 1.0, settings)
}
