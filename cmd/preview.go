package cmd

import (
	"fmt"
	"image"
	"image/color" // This is the standard library color package
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/term"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/manifest"

	colorize "github.com/fatih/color" // Rename this import to avoid the conflict
	"github.com/spf13/cobra"
)

// Character cells are roughly twice as tall as wide, and each cell renders
// two pixel rows, so 30x20 cells shows the card at its native 3:4 ratio.
const (
	previewCols = 30
	previewRows = 20
)

var previewCmd = &cobra.Command{
	Use:   "preview [slug]",
	Short: "Display a processed card with ANSI art",
	Long: `Preview renders a processed card face as ANSI half-block art in the
terminal, next to the card's manifest entry.

Examples:
  cardpress preview luke_skywalker
  cardpress preview yoda`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		imagePath := filepath.Join(cfg.ProcessedDir(), slug+".png")
		if _, err := os.Stat(imagePath); os.IsNotExist(err) {
			return fmt.Errorf("no processed card for %s (run 'cardpress process' first)", slug)
		}

		file, err := os.Open(imagePath)
		if err != nil {
			return fmt.Errorf("error opening %s: %v", imagePath, err)
		}
		img, _, err := image.Decode(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("error decoding %s: %v", imagePath, err)
		}

		// Card name from the manifest; fall back to the slug when the
		// manifest is missing or doesn't know this card
		name := slug
		if cards, err := manifest.LoadCards(cfg.CardsPath()); err == nil {
			for _, c := range cards {
				if c.Slug == slug {
					name = c.Name
					break
				}
			}
		}

		ansiArt := imageToAnsi(img, previewCols, previewRows)
		displayCard(name, slug, imagePath, img.Bounds(), ansiArt)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(previewCmd)
}

// imageToAnsi converts an image to ANSI half-block art
func imageToAnsi(img image.Image, width, height int) string {
	// Resize image to desired dimensions (doubled for half-block characters).
	// Nearest-neighbor keeps the pixel-art blocks intact.
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.NearestNeighbor)

	// Create a buffer for the ANSI output
	var buffer strings.Builder

	// Process the image
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// Get the four pixels that will make up one character cell
			c1 := getColorAt(resized, x, y)
			c2 := getColorAt(resized, x+1, y)
			c3 := getColorAt(resized, x, y+1)
			c4 := getColorAt(resized, x+1, y+1)

			// Use the upper half block character for simplicity and reliability
			// Top pixels as foreground, bottom pixels as background
			col1, _ := colorful.MakeColor(c1)
			col2, _ := colorful.MakeColor(c2)
			col3, _ := colorful.MakeColor(c3)
			col4, _ := colorful.MakeColor(c4)

			// Calculate average colors
			upperHalfFg := averageColor(col1, col2)
			lowerHalfBg := averageColor(col3, col4)

			// Convert to standard colors
			fg := colorfulToColor(upperHalfFg)
			bg := colorfulToColor(lowerHalfBg)

			// Append to buffer with the upper half block character
			buffer.WriteString(ansiColorString('▀', fg, bg))
		}
		buffer.WriteString("\n")
	}

	return buffer.String()
}

// getColorAt returns the color at a specific coordinate
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255} // Return black for out-of-bounds
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// colorfulToColor converts a colorful.Color to a standard color.Color
func colorfulToColor(c colorful.Color) color.Color {
	// Always return direct RGB values rather than mapping
	r := uint8(c.R * 255)
	g := uint8(c.G * 255)
	b := uint8(c.B * 255)

	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ansiColorString formats a character with truecolor ANSI codes
func ansiColorString(char rune, fg, bg color.Color) string {
	// Get RGB values for foreground and background
	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()

	// Convert from uint32 to uint8 (RGBA() returns values in range 0-65535)
	r1, g1, b1 = r1>>8, g1>>8, b1>>8
	r2, g2, b2 = r2>>8, g2>>8, b2>>8

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// displayCard displays the card information with ANSI art
func displayCard(name, slug, imagePath string, bounds image.Rectangle, ansiArt string) {
	// Split the ANSI art into lines
	ansiLines := strings.Split(ansiArt, "\n")
	maxAnsiWidth := 0
	for _, line := range ansiLines {
		// Calculate the visible width (excluding ANSI escape sequences)
		visibleWidth := len(stripAnsi(line))
		if visibleWidth > maxAnsiWidth {
			maxAnsiWidth = visibleWidth
		}
	}

	// Get terminal width
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80 // Default if we can't get terminal width
	}

	// Prepare the info lines
	var infoLines []string
	infoLines = append(infoLines, colorize.CyanString("Card: ")+colorize.HiWhiteString("%s", name))
	infoLines = append(infoLines, colorize.CyanString("Slug: ")+colorize.HiWhiteString(slug))
	infoLines = append(infoLines, colorize.CyanString("File: ")+colorize.HiWhiteString(imagePath))
	infoLines = append(infoLines, colorize.CyanString("Size: ")+
		colorize.HiWhiteString("%dx%d", bounds.Dx(), bounds.Dy()))

	// We'll display the ANSI art on the left and info on the right
	spacing := 4
	infoStartCol := maxAnsiWidth + spacing

	// Print the header
	fmt.Println()

	// Print each line
	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		// Print 2-character wide left padding
		fmt.Print("  ")
		// Print ANSI art line if available
		if i < len(ansiLines) {
			fmt.Print(ansiLines[i])
			// Pad to infoStartCol
			visibleWidth := len(stripAnsi(ansiLines[i]))
			fmt.Print(strings.Repeat(" ", infoStartCol-visibleWidth))
		} else {
			fmt.Print(strings.Repeat(" ", infoStartCol))
		}

		// Print info line if available and it fits
		if i < len(infoLines) && infoStartCol < width {
			fmt.Print(infoLines[i])
		}

		fmt.Println()
	}

	fmt.Println()
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// max returns the maximum of two integers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
