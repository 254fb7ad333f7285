// Package fonts turns TrueType and OpenType font data into glyph sources
// for caption text.
//
// A [Source] wraps a parsed font. Faces are created at any pixel size with
// 72 DPI and no hinting, so one point equals one pixel and glyph outlines
// keep their fractional positions.
package fonts

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	tdfont "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"tools.zach/dev/qrbrand/internal/textlayout"
)

// ErrFontLoad is returned when font data cannot be read or parsed.
var ErrFontLoad = errors.New("font load failed")

// DefaultName is the name of the embedded fallback font.
const DefaultName = "Go Regular"

// ///////////////////////////////////////////////
// Source
// ///////////////////////////////////////////////

// Source is a parsed font that produces faces at arbitrary sizes.
// It implements [textlayout.GlyphSource].
type Source struct {
	name string
	font *opentype.Font
}

// Name returns a human-readable label for the font, used in logs.
func (s *Source) Name() string { return s.name }

// Parse parses TrueType, OpenType, WOFF or WOFF2 data. WOFF containers are
// unpacked to SFNT first.
func Parse(name string, data []byte) (*Source, error) {
	if isWOFF(data) {
		sfnt, err := tdfont.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: converting WOFF to SFNT: %w", ErrFontLoad, name, err)
		}
		data = sfnt
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFontLoad, name, err)
	}
	return &Source{name: name, font: f}, nil
}

// LoadFile reads and parses the font file at path.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}
	return Parse(path, data)
}

var defaultSource = sync.OnceValues(func() (*Source, error) {
	return Parse(DefaultName, goregular.TTF)
})

// Default returns the embedded Go Regular font. It is parsed once.
func Default() (*Source, error) {
	return defaultSource()
}

// isWOFF checks the WOFF and WOFF2 magic bytes.
func isWOFF(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	magic := string(data[:4])
	return magic == "wOFF" || magic == "wOF2"
}

// ///////////////////////////////////////////////
// Face
// ///////////////////////////////////////////////

// Face returns a face at size pixels per em.
func (s *Source) Face(size float64) (textlayout.Face, error) {
	f, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s at size %.2f: %w", ErrFontLoad, s.name, size, err)
	}
	m := f.Metrics()
	return &face{
		f:       f,
		ascent:  fixedToFloat(m.Ascent),
		descent: -fixedToFloat(m.Descent),
	}, nil
}

// face adapts a [font.Face] to [textlayout.Face]. x/image reports descent
// as a positive distance below the baseline; it is negated here.
type face struct {
	f       font.Face
	ascent  float64
	descent float64
}

func (f *face) Advance(r rune) float64 {
	adv, _ := f.f.GlyphAdvance(r)
	return fixedToFloat(adv)
}

func (f *face) Kern(prev, r rune) float64 {
	return fixedToFloat(f.f.Kern(prev, r))
}

func (f *face) Metrics() (float64, float64) {
	return f.ascent, f.descent
}

// Glyph rasterizes r at (x, baseline). The mask returned by x/image is
// reused between calls, so coverage is consumed before returning.
func (f *face) Glyph(x, baseline float64, r rune, fn func(px, py int, v float64)) {
	dot := fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(baseline)}
	dr, mask, maskp, _, _ := f.f.Glyph(dot, r)
	if mask == nil || dr.Empty() {
		return
	}
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			_, _, _, a := mask.At(maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y).RGBA()
			if a == 0 {
				continue
			}
			fn(px, py, float64(a)/0xffff)
		}
	}
}

func (f *face) Close() error {
	return f.f.Close()
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
