// Package tesseract backs the ocr.Engine contract with the gosseract
// client. Importing it registers the engine as the library default.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/duskview/duskview/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine using gosseract.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single page image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}
	c := e.clientFactory()
	defer c.Close()

	imgData, err := cropImage(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(imgData); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		InputID:   in.ID,
		Page:      in.Page,
		PlainText: strings.TrimSpace(text),
		Words:     extractWords(c),
		Language:  firstLanguage(in.Languages),
	}, nil
}

func extractWords(c *gosseract.Client) []ocr.Word {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text: b.Word,
			Bounds: ocr.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100.0,
		})
	}
	return words
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

func cropImage(data []byte, region *ocr.Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(region.X)),
		int(math.Round(region.Y)),
		int(math.Round(region.X+region.Width)),
		int(math.Round(region.Y+region.Height)),
	)
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region %+v is outside the image bounds", *region)
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, si.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode cropped region: %w", err)
	}
	return buf.Bytes(), nil
}
