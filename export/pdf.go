package export

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"sort"
)

// pdfBuilder assembles a minimal multi-page PDF from raster pages. Each
// page carries a single FlateDecode DeviceRGB image XObject drawn to
// fill the MediaBox.
type pdfBuilder struct {
	objects map[int][]byte
	nextNum int
	pages   []pdfPage
}

type pdfPage struct {
	imageRef   int
	contentRef int
	widthPt    float64
	heightPt   float64
}

func newPDFBuilder() *pdfBuilder {
	return &pdfBuilder{objects: make(map[int][]byte), nextNum: 1}
}

func (b *pdfBuilder) alloc() int {
	n := b.nextNum
	b.nextNum++
	return n
}

// AddPage flattens the image to opaque RGB, deflates it, and records the
// image XObject plus its content stream. widthPt/heightPt are the page
// dimensions in PDF points.
func (b *pdfBuilder) AddPage(img *image.RGBA, widthPt, heightPt float64) error {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("export: page image has empty bounds")
	}

	rgb := make([]byte, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride:]
		for x := 0; x < w; x++ {
			rgb = append(rgb, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	var comp bytes.Buffer
	zw := zlib.NewWriter(&comp)
	if _, err := zw.Write(rgb); err != nil {
		return fmt.Errorf("export: compress page image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: compress page image: %w", err)
	}

	imgRef := b.alloc()
	var obj bytes.Buffer
	fmt.Fprintf(&obj, "<</Type /XObject /Subtype /Image /Width %d /Height %d ", w, h)
	obj.WriteString("/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode ")
	fmt.Fprintf(&obj, "/Length %d>>\nstream\n", comp.Len())
	obj.Write(comp.Bytes())
	obj.WriteString("\nendstream")
	b.objects[imgRef] = obj.Bytes()

	content := fmt.Sprintf("q\n%.2f 0 0 %.2f 0 0 cm\n/Im0 Do\nQ\n", widthPt, heightPt)
	contentRef := b.alloc()
	b.objects[contentRef] = []byte(fmt.Sprintf("<</Length %d>>\nstream\n%sendstream", len(content), content))

	b.pages = append(b.pages, pdfPage{
		imageRef:   imgRef,
		contentRef: contentRef,
		widthPt:    widthPt,
		heightPt:   heightPt,
	})
	return nil
}

// Bytes serializes the accumulated pages into a complete PDF file.
func (b *pdfBuilder) Bytes() ([]byte, error) {
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("export: no pages to serialize")
	}

	pagesRef := b.alloc()
	pageRefs := make([]int, 0, len(b.pages))
	for _, p := range b.pages {
		ref := b.alloc()
		pageRefs = append(pageRefs, ref)
		var dict bytes.Buffer
		fmt.Fprintf(&dict, "<</Type /Page /Parent %d 0 R ", pagesRef)
		fmt.Fprintf(&dict, "/MediaBox [0 0 %.2f %.2f] ", p.widthPt, p.heightPt)
		fmt.Fprintf(&dict, "/Resources <</XObject <</Im0 %d 0 R>>>> ", p.imageRef)
		fmt.Fprintf(&dict, "/Contents %d 0 R>>", p.contentRef)
		b.objects[ref] = dict.Bytes()
	}

	var kids bytes.Buffer
	kids.WriteByte('[')
	for i, ref := range pageRefs {
		if i > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(&kids, "%d 0 R", ref)
	}
	kids.WriteByte(']')
	b.objects[pagesRef] = []byte(fmt.Sprintf("<</Type /Pages /Count %d /Kids %s>>", len(pageRefs), kids.String()))

	catalogRef := b.alloc()
	b.objects[catalogRef] = []byte(fmt.Sprintf("<</Type /Catalog /Pages %d 0 R>>", pagesRef))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	ordered := make([]int, 0, len(b.objects))
	for num := range b.objects {
		ordered = append(ordered, num)
	}
	sort.Ints(ordered)

	offsets := make(map[int]int64, len(ordered))
	for _, num := range ordered {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		buf.Write(b.objects[num])
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	maxNum := ordered[len(ordered)-1]
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d /Root %d 0 R>>\nstartxref\n%d\n%%%%EOF\n",
		maxNum+1, catalogRef, xrefOffset)
	return buf.Bytes(), nil
}
