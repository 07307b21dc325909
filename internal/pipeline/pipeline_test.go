package pipeline

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardpress/internal/manifest"
)

// gradientImage returns a w x h image with many distinct colors
func gradientImage(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{A: 255})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, imaging.Save(img, path))
}

func distinctColors(img image.Image) int {
	seen := map[color.NRGBA]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)] = true
		}
	}
	return len(seen)
}

func TestOptionsValidate(t *testing.T) {
	t.Run("rejects non-positive heights", func(t *testing.T) {
		assert.Error(t, Options{FinalHeight: 0, PixelHeight: 64}.Validate())
		assert.Error(t, Options{FinalHeight: 256, PixelHeight: 0}.Validate())
		assert.Error(t, Options{FinalHeight: -1, PixelHeight: -1}.Validate())
	})

	t.Run("accepts positive heights", func(t *testing.T) {
		assert.NoError(t, Options{FinalHeight: 256, PixelHeight: 64}.Validate())
	})
}

func TestDerivedWidths(t *testing.T) {
	tests := []struct {
		height int
		width  int
	}{
		{256, 192},
		{257, 193}, // round(192.75)
		{64, 48},
		{100, 75},
		{1, 1}, // clamped floor
	}
	for _, tt := range tests {
		assert.Equal(t, tt.width, Options{FinalHeight: tt.height, PixelHeight: tt.height}.FinalWidth(),
			"width for height %d", tt.height)
	}
}

func TestCropRect(t *testing.T) {
	t.Run("wider than target crops columns", func(t *testing.T) {
		r := cropRect(image.Rect(0, 0, 400, 100), cardAspect)
		assert.Equal(t, 75, r.Dx()) // round(100 * 3/4)
		assert.Equal(t, 100, r.Dy())

		left := r.Min.X
		right := 400 - r.Max.X
		assert.LessOrEqual(t, abs(left-right), 1, "crop should be horizontally centered")
	})

	t.Run("taller than target crops rows", func(t *testing.T) {
		r := cropRect(image.Rect(0, 0, 100, 400), cardAspect)
		assert.Equal(t, 100, r.Dx())
		assert.Equal(t, 133, r.Dy()) // round(100 * 4/3)

		top := r.Min.Y
		bottom := 400 - r.Max.Y
		assert.LessOrEqual(t, abs(top-bottom), 1, "crop should be vertically centered")
	})

	t.Run("already at ratio keeps everything", func(t *testing.T) {
		r := cropRect(image.Rect(0, 0, 75, 100), cardAspect)
		assert.Equal(t, image.Rect(0, 0, 75, 100), r)
	})

	t.Run("respects non-zero origin", func(t *testing.T) {
		r := cropRect(image.Rect(10, 20, 410, 120), cardAspect)
		assert.Equal(t, 75, r.Dx())
		assert.Equal(t, 100, r.Dy())
		assert.GreaterOrEqual(t, r.Min.X, 10)
	})
}

func TestTransformDimensions(t *testing.T) {
	sources := []image.Image{
		gradientImage(640, 480), // landscape
		gradientImage(480, 640), // portrait
		gradientImage(300, 400), // exact ratio
		gradientImage(5, 3),     // tiny
	}

	tests := []Options{
		{FinalHeight: 256, PixelHeight: 64, Quantize: 28},
		{FinalHeight: 100, PixelHeight: 30, Quantize: 8},
		{FinalHeight: 3, PixelHeight: 2, Quantize: 4},
	}

	for _, options := range tests {
		p := &Processor{Options: options}
		for _, src := range sources {
			out := p.Transform(src)
			assert.Equal(t, options.FinalWidth(), out.Bounds().Dx())
			assert.Equal(t, options.FinalHeight, out.Bounds().Dy())
		}
	}
}

func TestQuantizeClamp(t *testing.T) {
	// Zero and negative palette sizes behave as the floor of 2
	for _, q := range []int{0, -5, 1} {
		p := &Processor{Options: Options{FinalHeight: 64, PixelHeight: 16, Quantize: q}}
		out := p.Transform(gradientImage(200, 200))
		assert.LessOrEqual(t, distinctColors(out), 2, "quantize=%d", q)
	}
}

func TestTransformFlattensAlpha(t *testing.T) {
	src := imaging.New(100, 100, color.NRGBA{R: 200, G: 40, B: 40, A: 0})
	p := &Processor{Options: Options{FinalHeight: 32, PixelHeight: 8, Quantize: 4}}
	out := p.Transform(src)
	for i := 3; i < len(out.Pix); i += 4 {
		require.EqualValues(t, 255, out.Pix[i], "output must be fully opaque")
	}
}

func TestProcessFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "card.png")
	writePNG(t, source, gradientImage(320, 240))

	p := &Processor{Options: Options{FinalHeight: 96, PixelHeight: 24, Quantize: 12}}

	first := filepath.Join(dir, "out1.png")
	second := filepath.Join(dir, "out2.png")
	require.NoError(t, p.ProcessFile(source, first))
	require.NoError(t, p.ProcessFile(source, second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical inputs and parameters must give identical output")
}

func TestFindSourceExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "yoda.png"), gradientImage(10, 10))
	writePNG(t, filepath.Join(dir, "yoda.jpg"), gradientImage(10, 10))
	writePNG(t, filepath.Join(dir, "rey.jpg"), gradientImage(10, 10))

	p := &Processor{SourceDir: dir}

	path, err := p.FindSource("yoda")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "yoda.png"), path, ".png probes before .jpg")

	path, err = p.FindSource("rey")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rey.jpg"), path)

	_, err = p.FindSource("kylo_ren")
	assert.ErrorIs(t, err, ErrNoSourceImage)
}

func TestRunSkipsMissingSource(t *testing.T) {
	sourceDir := t.TempDir()
	processedDir := filepath.Join(t.TempDir(), "processed")

	writePNG(t, filepath.Join(sourceDir, "luke_skywalker.png"), gradientImage(120, 160))
	writePNG(t, filepath.Join(sourceDir, "han_solo.jpg"), gradientImage(160, 120))

	cards := []manifest.Card{
		{Name: "Luke Skywalker", Slug: "luke_skywalker"},
		{Name: "Chewbacca", Slug: "chewbacca"}, // no source image
		{Name: "Han Solo", Slug: "han_solo"},
	}

	p := &Processor{
		SourceDir:    sourceDir,
		ProcessedDir: processedDir,
		Options:      Options{FinalHeight: 64, PixelHeight: 16, Quantize: 8},
	}

	result, err := p.Run(cards)
	require.NoError(t, err, "a missing source is a per-card failure, not a run failure")

	require.Len(t, result.Outputs, 2)
	assert.Equal(t, "Luke Skywalker", result.Outputs[0].Card.Name)
	assert.Equal(t, "Han Solo", result.Outputs[1].Card.Name)
	for _, out := range result.Outputs {
		_, err := os.Stat(out.Path)
		assert.NoError(t, err, "output file %s must exist", out.Path)
	}

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "chewbacca", result.Failures[0].Slug)
	assert.ErrorIs(t, result.Failures[0].Err, ErrNoSourceImage)
}

func TestRunRejectsBadOptions(t *testing.T) {
	p := &Processor{
		SourceDir:    t.TempDir(),
		ProcessedDir: filepath.Join(t.TempDir(), "processed"),
		Options:      Options{FinalHeight: 0, PixelHeight: 64, Quantize: 8},
	}
	_, err := p.Run([]manifest.Card{{Name: "Yoda", Slug: "yoda"}})
	require.Error(t, err)

	_, statErr := os.Stat(p.ProcessedDir)
	assert.True(t, os.IsNotExist(statErr), "no output directory on configuration errors")
}

func TestRunFailsEntryWithoutSlug(t *testing.T) {
	p := &Processor{
		SourceDir:    t.TempDir(),
		ProcessedDir: filepath.Join(t.TempDir(), "processed"),
		Options:      Options{FinalHeight: 64, PixelHeight: 16, Quantize: 8},
	}
	result, err := p.Run([]manifest.Card{{Name: "Nameless"}})
	require.NoError(t, err)
	assert.Empty(t, result.Outputs)
	require.Len(t, result.Failures, 1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
