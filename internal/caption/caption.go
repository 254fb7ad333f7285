// Package caption appends a text band below a rendered QR code.
package caption

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"tools.zach/dev/qrbrand/internal/canvas"
	"tools.zach/dev/qrbrand/internal/textlayout"
)

// Band sizing.
const (
	// BandFraction is the band height as a fraction of the QR height.
	BandFraction = 0.18
	// MinBandHeight is the smallest band height in pixels.
	MinBandHeight = 120
)

// BandHeight returns the caption band height for a QR canvas of height h.
func BandHeight(h int) int {
	return max(int(math.Round(float64(h)*BandFraction)), MinBandHeight)
}

// Append returns a new canvas with qr copied to the top and text drawn in a
// white band underneath. qr is not modified.
func Append(qr *canvas.Canvas, src textlayout.GlyphSource, text string, col color.RGBA) (*canvas.Canvas, error) {
	if qr == nil {
		return nil, errors.New("append caption: nil canvas")
	}
	w, h := qr.Width(), qr.Height()
	band := BandHeight(h)

	out := canvas.New(w, h+band, canvas.White)
	out.CopyFrom(qr, 0, 0)
	if _, err := textlayout.Draw(out, src, text, h, band, col); err != nil {
		return nil, fmt.Errorf("draw caption: %w", err)
	}
	return out, nil
}
