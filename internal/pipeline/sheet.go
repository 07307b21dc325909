package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// SheetName is the contact sheet filename inside the processed directory
const SheetName = "contact_sheet.png"

// sheetBackground is the fill color behind the tiles
var sheetBackground = color.NRGBA{R: 20, G: 20, B: 26, A: 255}

// ContactSheet tiles the given card faces left-to-right, top-to-bottom into
// a fixed-column grid with uniform margins and writes it next to them. The
// tiles already share one size, so none of them is resized here. Returns the
// written path, or "" when there is nothing to tile.
func (p *Processor) ContactSheet(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}

	columns := p.SheetColumns
	if columns <= 0 {
		columns = 4
	}
	margin := p.SheetMargin
	if margin < 0 {
		margin = 0
	}

	tileWidth := p.Options.FinalWidth()
	tileHeight := p.Options.FinalHeight
	rows := (len(paths) + columns - 1) / columns

	sheet := imaging.New(
		columns*tileWidth+(columns+1)*margin,
		rows*tileHeight+(rows+1)*margin,
		sheetBackground,
	)

	for index, path := range paths {
		tile, err := imaging.Open(path)
		if err != nil {
			return "", fmt.Errorf("error opening tile %s: %v", path, err)
		}
		x := margin + (index%columns)*(tileWidth+margin)
		y := margin + (index/columns)*(tileHeight+margin)
		sheet = imaging.Paste(sheet, tile, image.Pt(x, y))
	}

	destination := filepath.Join(p.ProcessedDir, SheetName)
	if err := imaging.Save(sheet, destination); err != nil {
		return "", fmt.Errorf("error saving contact sheet: %v", err)
	}
	return destination, nil
}
