// Package symbol produces QR module grids.
//
// Encoding and error correction are delegated to github.com/skip2/go-qrcode.
// The rest of qrbrand only sees the resulting [Grid] of dark and light
// modules, without the library's built-in quiet zone.
package symbol

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("content cannot be empty")

// Grid is a square grid of QR modules.
type Grid interface {
	// Size returns the side length in modules.
	Size() int
	// Dark reports whether the module at column x, row y is dark.
	Dark(x, y int) bool
}

// Matrix is a row-major [Grid] backed by a [][]bool.
type Matrix [][]bool

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

// Dark reports whether m[y][x] is set. Coordinates outside the matrix are
// light.
func (m Matrix) Dark(x, y int) bool {
	if y < 0 || y >= len(m) || x < 0 || x >= len(m[y]) {
		return false
	}
	return m[y][x]
}

// ///////////////////////////////////////////////
// Error Correction Levels
// ///////////////////////////////////////////////

// Level is a QR error-correction level.
type Level = qrcode.RecoveryLevel

// Supported levels, from least to most redundant.
const (
	Low     Level = qrcode.Low
	Medium  Level = qrcode.Medium
	High    Level = qrcode.High
	Highest Level = qrcode.Highest
)

// ParseLevel converts a level name to a [Level].
// Accepts low, medium, high, highest and the single letters L, M, Q, H
// (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return Low, nil
	case "medium", "m":
		return Medium, nil
	case "high", "q":
		return High, nil
	case "highest", "h":
		return Highest, nil
	default:
		return Low, fmt.Errorf("invalid error correction level %q: must be low, medium, high, or highest", s)
	}
}

// ///////////////////////////////////////////////
// Encoding
// ///////////////////////////////////////////////

// Encode builds the QR symbol for content at the given level and returns its
// modules without a quiet zone.
func Encode(content string, level Level) (Matrix, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	q, err := qrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("build QR code: %w", err)
	}
	q.DisableBorder = true
	return Matrix(q.Bitmap()), nil
}
