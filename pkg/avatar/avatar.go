package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"unicode"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	Size = 512

	// MaxUploadBytes caps user-supplied avatar files.
	MaxUploadBytes = 2 << 20
)

var ErrTooLarge = errors.New("avatar must be 2MB or smaller")

var palette = []color.NRGBA{
	{R: 0xF0, G: 0x2E, B: 0x65, A: 0xFF},
	{R: 0x8E, G: 0x51, B: 0xFF, A: 0xFF},
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF},
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF},
	{R: 0x0E, G: 0x74, B: 0x90, A: 0xFF},
	{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
}

// Generator is safe for concurrent use; faces are built per avatar.
type Generator struct {
	font *truetype.Font
}

func NewGenerator() (*Generator, error) {
	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avatar font: %w", err)
	}
	return &Generator{font: parsed}, nil
}

// ColorFor picks a stable background for a seed (usually the user id).
func ColorFor(seed string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Initials returns up to two upper-case letters taken from the name's words.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// Initials draws a circular PNG with the name's initials on a seeded color.
func (g *Generator) Initials(name, seed string) ([]byte, error) {
	dc := gg.NewContext(Size, Size)

	dc.DrawCircle(Size/2, Size/2, Size/2)
	dc.Clip()

	dc.SetColor(ColorFor(seed))
	dc.DrawRectangle(0, 0, Size, Size)
	dc.Fill()

	dc.SetFontFace(truetype.NewFace(g.font, &truetype.Options{
		Size:    206,
		DPI:     72,
		Hinting: font.HintingNone,
	}))
	dc.SetColor(color.White)
	dc.DrawStringAnchored(Initials(name), Size/2, Size/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize center-crops an uploaded image to a square, scales it to Size and
// clips it to a circle.
func Normalize(raw []byte) ([]byte, error) {
	if len(raw) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side == 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2

	cropped := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(cropped, cropped.Bounds(), img, image.Point{X: x0, Y: y0}, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(Size, Size)
	dc.DrawCircle(Size/2, Size/2, Size/2)
	dc.Clip()
	dc.DrawImage(scaled, 0, 0)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// IsImageType reports whether a multipart content type is an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
