package logo

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tools.zach/dev/qrbrand/internal/canvas"
)

// gradient returns a w×h opaque test image.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// solid returns a w×h image filled with col.
func solid(w, h int, col color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, col)
		}
	}
	return img
}

// ///////////////////////////////////////////////
// Fit
// ///////////////////////////////////////////////

func TestFitPassThroughWhenContained(t *testing.T) {
	src := gradient(100, 200)
	got := Fit(src, 200, 400)
	assert.Equal(t, 100, got.Bounds().Dx())
	assert.Equal(t, 200, got.Bounds().Dy())
	assert.Equal(t, src.Pix, got.Pix, "contained image must be copied unchanged")
}

func TestFitIsIdempotent(t *testing.T) {
	src := gradient(40, 30)
	once := Fit(src, 40, 30)
	twice := Fit(once, 40, 30)
	assert.Equal(t, once.Bounds(), twice.Bounds())
}

func TestFitShrinks(t *testing.T) {
	got := Fit(gradient(100, 200), 50, 50)
	assert.Equal(t, 25, got.Bounds().Dx())
	assert.Equal(t, 50, got.Bounds().Dy())
}

func TestFitSizeNeverExceedsBox(t *testing.T) {
	dims := []int{1, 2, 3, 7, 50, 99, 100, 333, 1000}
	for _, w := range dims {
		for _, h := range dims {
			for _, maxW := range dims {
				for _, maxH := range dims {
					nw, nh := FitSize(w, h, maxW, maxH)
					if nw > maxW || nh > maxH {
						t.Fatalf("FitSize(%d,%d,%d,%d) = %dx%d exceeds box", w, h, maxW, maxH, nw, nh)
					}
					if nw > w || nh > h {
						t.Fatalf("FitSize(%d,%d,%d,%d) = %dx%d enlarges", w, h, maxW, maxH, nw, nh)
					}
					if nw < 1 || nh < 1 {
						t.Fatalf("FitSize(%d,%d,%d,%d) = %dx%d below 1px", w, h, maxW, maxH, nw, nh)
					}
				}
			}
		}
	}
}

func TestFitSizeMinimumOnePixel(t *testing.T) {
	nw, nh := FitSize(1000, 1, 10, 10)
	assert.Equal(t, 10, nw)
	assert.Equal(t, 1, nh)
}

func TestFitSizeZeroSource(t *testing.T) {
	nw, nh := FitSize(0, 10, 5, 5)
	assert.Equal(t, 0, nw)
	assert.Equal(t, 10, nh)

	got := Fit(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 5, 5)
	assert.True(t, got.Bounds().Empty())
}

// ///////////////////////////////////////////////
// Scale validation
// ///////////////////////////////////////////////

func TestValidateScale(t *testing.T) {
	tests := []struct {
		scale   float64
		wantErr bool
	}{
		{0.04, true},
		{0.05, false},
		{0.20, false},
		{0.35, false},
		{0.40, true},
		{-1, true},
	}
	for _, tt := range tests {
		err := ValidateScale(tt.scale)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidLogoScale, "scale %g", tt.scale)
			assert.Contains(t, err.Error(), "between")
		} else {
			assert.NoError(t, err, "scale %g", tt.scale)
		}
	}
}

func TestOverlayRejectsScale(t *testing.T) {
	for _, s := range []float64{0.04, 0.40} {
		c := canvas.New(100, 100, canvas.Black)
		_, err := Overlay(c, gradient(10, 10), Options{Scale: s})
		require.ErrorIs(t, err, ErrInvalidLogoScale)
		px, _ := c.Pixel(50, 50)
		assert.Equal(t, canvas.Black, px, "rejected overlay must not draw")
	}

	_, err := Overlay(canvas.New(100, 100, canvas.Black), gradient(10, 10), Options{Scale: 0.20})
	assert.NoError(t, err)
}

// ///////////////////////////////////////////////
// Placement and compositing
// ///////////////////////////////////////////////

func TestPlace(t *testing.T) {
	p := Place(101, 101, 20, 10, Options{Plate: true, Pad: 0.18})
	// x0 = (101-20)/2 = 40, y0 = (101-10)/2 = 45
	assert.Equal(t, image.Rect(40, 45, 60, 55), p.Logo)
	// pad = round(20*0.18) = 4 -> plate 28x18 at (36,41)
	assert.Equal(t, image.Rect(36, 41, 64, 59), p.Plate)

	p = Place(101, 101, 20, 10, Options{})
	assert.True(t, p.Plate.Empty())
}

func TestOverlayWithPlate(t *testing.T) {
	c := canvas.New(200, 200, canvas.Black)
	red := color.NRGBA{R: 255, A: 255}

	p, err := Overlay(c, solid(40, 40, red), Options{Scale: 0.20, Plate: true, Pad: 0.25})
	require.NoError(t, err)

	// box = 40 -> logo 40x40 at (80,80); pad = 10 -> plate 60x60 at (70,70)
	assert.Equal(t, image.Rect(80, 80, 120, 120), p.Logo)
	assert.Equal(t, image.Rect(70, 70, 130, 130), p.Plate)

	px, _ := c.Pixel(100, 100)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, px, "logo on top")
	px, _ = c.Pixel(72, 72)
	assert.Equal(t, canvas.White, px, "plate visible around logo")
	px, _ = c.Pixel(60, 60)
	assert.Equal(t, canvas.Black, px, "outside plate untouched")
}

func TestOverlayWithoutPlateKeepsModules(t *testing.T) {
	c := canvas.New(200, 200, canvas.Black)
	_, err := Overlay(c, solid(40, 40, color.NRGBA{R: 255, A: 255}), Options{Scale: 0.20, Pad: 0.25})
	require.NoError(t, err)

	px, _ := c.Pixel(75, 75)
	assert.Equal(t, canvas.Black, px)
}

func TestOverlayBlendsTransparentLogo(t *testing.T) {
	c := canvas.New(100, 100, canvas.Black)
	_, err := Overlay(c, solid(20, 20, color.NRGBA{R: 255, G: 255, B: 255, A: 0}), Options{Scale: 0.20, Plate: false})
	require.NoError(t, err)

	px, _ := c.Pixel(50, 50)
	assert.Equal(t, canvas.Black, px, "transparent logo pixels must show what lies beneath")
}

func TestOverlayPlateClipsToCanvas(t *testing.T) {
	c := canvas.New(100, 100, canvas.Black)
	// pad 3.0 makes the plate far larger than the canvas.
	p, err := Overlay(c, solid(35, 35, color.NRGBA{B: 255, A: 255}), Options{Scale: 0.35, Plate: true, Pad: 3.0})
	require.NoError(t, err)
	assert.True(t, p.Plate.Min.X < 0)

	px, _ := c.Pixel(0, 0)
	assert.Equal(t, canvas.White, px)
	px, _ = c.Pixel(99, 99)
	assert.Equal(t, canvas.White, px)
}

func TestOverlayPreservesAspect(t *testing.T) {
	c := canvas.New(400, 400, canvas.White)
	p, err := Overlay(c, gradient(200, 100), Options{Scale: 0.25})
	require.NoError(t, err)
	assert.Equal(t, 100, p.Logo.Dx())
	assert.Equal(t, 50, p.Logo.Dy())
	assert.Equal(t, image.Pt(150, 175), p.Logo.Min)
}
