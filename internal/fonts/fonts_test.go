package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"tools.zach/dev/qrbrand/internal/textlayout"
)

var _ textlayout.GlyphSource = (*Source)(nil)

func TestDefaultParsesOnce(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, DefaultName, a.Name())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("junk", []byte("definitely not a font"))
	assert.ErrorIs(t, err, ErrFontLoad)
	assert.Contains(t, err.Error(), "junk")
}

func TestParseRejectsBrokenWOFF(t *testing.T) {
	_, err := Parse("broken.woff2", []byte("wOF2 truncated"))
	assert.ErrorIs(t, err, ErrFontLoad)
}

func TestIsWOFF(t *testing.T) {
	assert.True(t, isWOFF([]byte("wOF2....")))
	assert.True(t, isWOFF([]byte("wOFF....")))
	assert.False(t, isWOFF(goregular.TTF))
	assert.False(t, isWOFF([]byte("wO")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

	src, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.ErrorIs(t, err, ErrFontLoad)
}

// ///////////////////////////////////////////////
// Face
// ///////////////////////////////////////////////

func TestFaceMetrics(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	face, err := src.Face(64)
	require.NoError(t, err)
	defer face.Close()

	ascent, descent := face.Metrics()
	assert.Greater(t, ascent, 0.0)
	assert.Less(t, descent, 0.0, "descent is below the baseline")
	assert.Less(t, ascent-descent, 64.0*1.5)
}

func TestFaceAdvanceScalesWithSize(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	small, err := src.Face(20)
	require.NoError(t, err)
	defer small.Close()
	large, err := src.Face(40)
	require.NoError(t, err)
	defer large.Close()

	a := small.Advance('M')
	b := large.Advance('M')
	assert.Greater(t, a, 0.0)
	assert.InDelta(t, 2*a, b, 0.1)
	assert.Greater(t, small.Advance('M'), small.Advance('i'))
}

func TestFaceGlyphCoverage(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)
	face, err := src.Face(48)
	require.NoError(t, err)
	defer face.Close()

	const x, baseline = 10.0, 60.0
	var covered int
	minY, maxY := 1<<30, -1
	face.Glyph(x, baseline, 'H', func(px, py int, v float64) {
		covered++
		assert.Greater(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		minY = min(minY, py)
		maxY = max(maxY, py)
	})
	assert.Positive(t, covered)

	ascent, _ := face.Metrics()
	assert.GreaterOrEqual(t, minY, int(baseline-ascent)-1, "glyph stays below the ascent line")
	assert.LessOrEqual(t, maxY, int(baseline), "capital H sits on the baseline")

	var spaces int
	face.Glyph(x, baseline, ' ', func(px, py int, v float64) { spaces++ })
	assert.Zero(t, spaces)
}

func TestFaceDrivesLayout(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	line, err := textlayout.Layout(src, "https://example.com", 1024, 1024, 184)
	require.NoError(t, err)
	assert.Equal(t, 64.0, line.FontSize)
	assert.Greater(t, line.Width, 0.0)
	assert.LessOrEqual(t, line.Width, float64(line.MaxWidth))
}
