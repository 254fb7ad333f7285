package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses "#RRGGBB" (the "#" is optional) into an opaque
// color.RGBA.
func ParseHexColor(hex string) (color.RGBA, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(digits) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// HexColor formats col as "#RRGGBB", ignoring alpha.
func HexColor(col color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B)
}
