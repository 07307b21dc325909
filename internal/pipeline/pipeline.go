package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/arcanaland/cardpress/internal/manifest"
)

// Card faces are portrait 3:4.
const cardAspect = 3.0 / 4.0

// minQuantize is the palette floor; a single-color card is useless.
const minQuantize = 2

// sourceExtensions is the probe order for raw artwork files.
var sourceExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// ErrNoSourceImage reports that no raw artwork exists for a slug.
var ErrNoSourceImage = errors.New("no source image found")

// Options are the numeric parameters of the card pipeline. Widths are always
// derived from the heights, never set directly.
type Options struct {
	FinalHeight int // height of the written card face
	PixelHeight int // intermediate height that sets the pixel-block size
	Quantize    int // palette color count, clamped to minQuantize
}

// Validate rejects geometry that cannot produce an image. It runs before any
// card is touched so a bad invocation leaves no partial output.
func (o Options) Validate() error {
	if o.FinalHeight <= 0 || o.PixelHeight <= 0 {
		return fmt.Errorf("height and pixel height must be > 0 (got %d and %d)", o.FinalHeight, o.PixelHeight)
	}
	return nil
}

// FinalWidth returns the written card width
func (o Options) FinalWidth() int {
	return widthFor(o.FinalHeight)
}

// PixelWidth returns the intermediate pixel-grid width
func (o Options) PixelWidth() int {
	return widthFor(o.PixelHeight)
}

func widthFor(height int) int {
	w := int(math.Round(float64(height) * cardAspect))
	if w < 1 {
		w = 1
	}
	return w
}

// Processor converts raw artwork into uniform pixel-art card faces
type Processor struct {
	SourceDir    string
	ProcessedDir string
	Options      Options

	// Contact sheet layout
	SheetColumns int
	SheetMargin  int
}

// Output records one successfully written card face
type Output struct {
	Card manifest.Card
	Path string
}

// Failure records one card that could not be processed
type Failure struct {
	Slug string
	Err  error
}

// Result is the outcome of a batch run
type Result struct {
	Outputs  []Output
	Failures []Failure
}

// Paths returns the written file paths in manifest order
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Outputs))
	for _, o := range r.Outputs {
		paths = append(paths, o.Path)
	}
	return paths
}

// Run processes every card in the manifest. Per-card problems (missing or
// undecodable artwork) are collected in the result and do not stop the batch;
// only invalid options or an unwritable destination directory abort the run.
func (p *Processor) Run(cards []manifest.Card) (*Result, error) {
	if err := p.Options.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.ProcessedDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating processed directory: %v", err)
	}

	result := &Result{}
	for _, card := range cards {
		if card.Slug == "" {
			result.Failures = append(result.Failures, Failure{
				Slug: card.Slug,
				Err:  fmt.Errorf("manifest entry %q has no slug", card.Name),
			})
			continue
		}

		source, err := p.FindSource(card.Slug)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Slug: card.Slug, Err: err})
			continue
		}

		destination := filepath.Join(p.ProcessedDir, card.Slug+".png")
		if err := p.ProcessFile(source, destination); err != nil {
			result.Failures = append(result.Failures, Failure{Slug: card.Slug, Err: err})
			continue
		}

		result.Outputs = append(result.Outputs, Output{Card: card, Path: destination})
	}
	return result, nil
}

// FindSource probes the source directory for a slug's artwork, first
// extension wins
func (p *Processor) FindSource(slug string) (string, error) {
	for _, ext := range sourceExtensions {
		candidate := filepath.Join(p.SourceDir, slug+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoSourceImage, slug, p.SourceDir)
}

// ProcessFile runs the transform over one file pair. The source handle is
// closed before any pixel work starts.
func (p *Processor) ProcessFile(source, destination string) error {
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("error opening %s: %v", source, err)
	}
	img, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("error decoding %s: %v", source, err)
	}

	if err := imaging.Save(p.Transform(img), destination); err != nil {
		return fmt.Errorf("error saving %s: %v", destination, err)
	}
	return nil
}

// Transform applies the card pipeline to a decoded image. The step order is
// load-bearing: crop to ratio, downscale to the pixel grid, reduce the
// palette, then upscale. Both rescales are nearest-neighbor so the pixel
// blocks keep hard edges.
func (p *Processor) Transform(src image.Image) *image.NRGBA {
	img := flattenRGB(src)
	img = imaging.Crop(img, cropRect(img.Bounds(), cardAspect))
	img = imaging.Resize(img, p.Options.PixelWidth(), p.Options.PixelHeight, imaging.NearestNeighbor)
	img = quantizeImage(img, p.Options.Quantize)
	return imaging.Resize(img, p.Options.FinalWidth(), p.Options.FinalHeight, imaging.NearestNeighbor)
}

// flattenRGB normalizes any decoded raster to opaque NRGBA
func flattenRGB(src image.Image) *image.NRGBA {
	img := imaging.Clone(src)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// cropRect returns the centered crop of b with the given width/height ratio.
// Wider sources lose columns, taller sources lose rows. The offset uses
// integer halving, so odd remainders land one pixel off-center.
func cropRect(b image.Rectangle, ratio float64) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if float64(w)/float64(h) > ratio {
		cw := int(math.Round(float64(h) * ratio))
		x0 := b.Min.X + (w-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := int(math.Round(float64(w) / ratio))
	y0 := b.Min.Y + (h-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}

// quantizeImage reduces img to at most colors entries via median cut and
// converts back to NRGBA
func quantizeImage(img *image.NRGBA, colors int) *image.NRGBA {
	if colors < minQuantize {
		colors = minQuantize
	}

	quantizer := quantize.MedianCutQuantizer{}
	palette := quantizer.Quantize(make(color.Palette, 0, colors), img)

	paletted := image.NewPaletted(img.Bounds(), palette)
	draw.Draw(paletted, paletted.Bounds(), img, img.Bounds().Min, draw.Src)
	return imaging.Clone(paletted)
}
