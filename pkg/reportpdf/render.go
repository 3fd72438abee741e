// Package reportpdf turns a markdown progress report into a paginated A4 PDF.
// The report is drawn onto a fixed-width canvas first and then sliced into
// page-sized images, so the output looks the same as the on-screen card.
package reportpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"fundocs-be/pkg/markdown"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	CanvasWidth = 800
	padding     = 20
	lineSpacing = 1.6

	// A4 in points.
	pageWidthPt  = 595.28
	pageHeightPt = 841.89
	marginPt     = 20
)

type textStyle struct {
	font   *truetype.Font
	size   float64
	color  string
	indent float64
	after  float64
}

// Renderer holds parsed fonts and is safe for concurrent use; faces are
// built per render.
type Renderer struct {
	regular *truetype.Font
	styles  map[markdown.Kind]textStyle
}

func New() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	italic, err := truetype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse italic font: %w", err)
	}
	mono, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}

	return &Renderer{
		regular: regular,
		styles: map[markdown.Kind]textStyle{
			markdown.Heading1:  {font: bold, size: 28, color: "#F02E65", after: 12},
			markdown.Heading2:  {font: bold, size: 24, color: "#8E51FF", after: 10},
			markdown.Heading3:  {font: bold, size: 20, color: "#333333", after: 8},
			markdown.Paragraph: {font: regular, size: 16, color: "#000000", after: 10},
			markdown.ListItem:  {font: regular, size: 16, color: "#000000", indent: 20, after: 4},
			markdown.Quote:     {font: italic, size: 16, color: "#555555", indent: 14, after: 10},
			markdown.Code:      {font: mono, size: 14, color: "#000000", indent: 10},
		},
	}, nil
}

type line struct {
	kind  markdown.Kind
	text  string
	style textStyle
	face  font.Face
	y     float64
}

// faces builds the per-render font faces, one per block kind.
func (r *Renderer) faces() map[markdown.Kind]font.Face {
	out := make(map[markdown.Kind]font.Face, len(r.styles))
	for kind, st := range r.styles {
		out[kind] = truetype.NewFace(st.font, &truetype.Options{Size: st.size, DPI: 72, Hinting: font.HintingFull})
	}
	return out
}

// supported drops runes the base font has no glyph for (mostly emoji).
func (r *Renderer) supported(s string) string {
	return strings.Map(func(c rune) rune {
		if c == '\t' {
			return ' '
		}
		if r.regular.Index(c) == 0 {
			return -1
		}
		return c
	}, s)
}

func (r *Renderer) layout(blocks []markdown.Block, faces map[markdown.Kind]font.Face) ([]line, float64) {
	measure := gg.NewContext(CanvasWidth, 1)
	var lines []line
	y := float64(padding)

	for _, b := range blocks {
		if b.Kind == markdown.Blank {
			y += 6
			continue
		}
		st := r.styles[b.Kind]
		face := faces[b.Kind]
		measure.SetFontFace(face)

		text := r.supported(b.Text)
		if b.Kind == markdown.ListItem && !startsWithNumber(text) {
			text = "• " + text
		}
		width := float64(CanvasWidth-2*padding) - st.indent

		wrapped := measure.WordWrap(text, width)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		for _, w := range wrapped {
			y += st.size * lineSpacing
			lines = append(lines, line{kind: b.Kind, text: w, style: st, face: face, y: y})
		}
		y += st.after
	}
	return lines, y + padding
}

func startsWithNumber(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

// Canvas draws the report onto a white 800px-wide image.
func (r *Renderer) Canvas(report string) image.Image {
	blocks := markdown.Parse(report)
	lines, height := r.layout(blocks, r.faces())
	if height < 2*padding {
		height = 2 * padding
	}

	dc := gg.NewContext(CanvasWidth, int(height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, l := range lines {
		x := float64(padding) + l.style.indent
		switch l.kind {
		case markdown.Quote:
			dc.SetHexColor("#CCCCCC")
			dc.DrawRectangle(padding, l.y-l.style.size*lineSpacing+4, 4, l.style.size*lineSpacing)
			dc.Fill()
		case markdown.Code:
			dc.SetHexColor("#F5F5F5")
			dc.DrawRectangle(padding, l.y-l.style.size*lineSpacing+4, CanvasWidth-2*padding, l.style.size*lineSpacing)
			dc.Fill()
		}
		dc.SetFontFace(l.face)
		dc.SetHexColor(l.style.color)
		dc.DrawString(l.text, x, l.y)
	}
	return dc.Image()
}

// PDF renders the report and slices it across as many A4 pages as needed.
func (r *Renderer) PDF(report string) ([]byte, error) {
	img := r.Canvas(report)
	bounds := img.Bounds()

	contentWidth := pageWidthPt - 2*marginPt
	scale := contentWidth / float64(bounds.Dx()) // points per pixel
	sliceHeight := int((pageHeightPt - 2*marginPt) / scale)

	sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("canvas does not support sub images")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Progress Report", true)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for page, top := 0, bounds.Min.Y; top < bounds.Max.Y; page, top = page+1, top+sliceHeight {
		bottom := top + sliceHeight
		if bottom > bounds.Max.Y {
			bottom = bounds.Max.Y
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, sub.SubImage(image.Rect(bounds.Min.X, top, bounds.Max.X, bottom))); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", page+1, err)
		}

		name := fmt.Sprintf("page-%d", page)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, marginPt, marginPt, contentWidth, float64(bottom-top)*scale, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount reports how many A4 pages a canvas of the given pixel height needs.
func PageCount(canvasHeight int) int {
	scale := (pageWidthPt - 2*marginPt) / CanvasWidth
	slice := int((pageHeightPt - 2*marginPt) / scale)
	if canvasHeight <= 0 {
		return 1
	}
	return (canvasHeight + slice - 1) / slice
}
