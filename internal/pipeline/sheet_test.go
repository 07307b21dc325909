package pipeline

import (
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSheetLayout(t *testing.T) {
	dir := t.TempDir()
	p := &Processor{
		ProcessedDir: dir,
		Options:      Options{FinalHeight: 40, PixelHeight: 10, Quantize: 8},
		SheetColumns: 4,
		SheetMargin:  12,
	}
	tileW := p.Options.FinalWidth() // 30
	tileH := p.Options.FinalHeight

	// Five tiles in distinct solid colors so slots can be told apart
	tileColors := []color.NRGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
	}
	var paths []string
	for i, c := range tileColors {
		path := filepath.Join(dir, fmt.Sprintf("tile%d.png", i))
		require.NoError(t, imaging.Save(imaging.New(tileW, tileH, c), path))
		paths = append(paths, path)
	}

	sheetPath, err := p.ContactSheet(paths)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SheetName), sheetPath)

	sheet, err := imaging.Open(sheetPath)
	require.NoError(t, err)

	// 5 tiles over 4 columns = 2 rows
	assert.Equal(t, 4*tileW+5*12, sheet.Bounds().Dx())
	assert.Equal(t, 2*tileH+3*12, sheet.Bounds().Dy())

	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(sheet.At(x, y)).(color.NRGBA)
	}

	// Margins stay background-colored
	assert.Equal(t, sheetBackground, at(0, 0))
	assert.Equal(t, sheetBackground, at(12+tileW, 12), "gap between columns")

	// Tile (r,c) top-left sits at (margin + c*(tileW+margin), margin + r*(tileH+margin))
	for i, c := range tileColors {
		x := 12 + (i%4)*(tileW+12)
		y := 12 + (i/4)*(tileH+12)
		assert.Equal(t, c, at(x, y), "tile %d top-left", i)
		assert.Equal(t, c, at(x+tileW-1, y+tileH-1), "tile %d bottom-right", i)
	}

	// Unfilled slots in the last row stay background-colored
	assert.Equal(t, sheetBackground, at(12+1*(tileW+12), 12+1*(tileH+12)))
}

func TestContactSheetEmptyBatch(t *testing.T) {
	p := &Processor{
		ProcessedDir: t.TempDir(),
		Options:      Options{FinalHeight: 40, PixelHeight: 10, Quantize: 8},
		SheetColumns: 4,
		SheetMargin:  12,
	}
	path, err := p.ContactSheet(nil)
	require.NoError(t, err)
	assert.Empty(t, path, "no sheet is written for an empty batch")
}

func TestContactSheetRowCount(t *testing.T) {
	tests := []struct {
		tiles int
		rows  int
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{8, 2},
		{9, 3},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		p := &Processor{
			ProcessedDir: dir,
			Options:      Options{FinalHeight: 20, PixelHeight: 5, Quantize: 4},
			SheetColumns: 4,
			SheetMargin:  12,
		}
		var paths []string
		for i := 0; i < tt.tiles; i++ {
			path := filepath.Join(dir, fmt.Sprintf("t%d.png", i))
			require.NoError(t, imaging.Save(imaging.New(p.Options.FinalWidth(), 20, color.NRGBA{A: 255}), path))
			paths = append(paths, path)
		}

		sheetPath, err := p.ContactSheet(paths)
		require.NoError(t, err)
		sheet, err := imaging.Open(sheetPath)
		require.NoError(t, err)
		assert.Equal(t, tt.rows*20+(tt.rows+1)*12, sheet.Bounds().Dy(), "%d tiles", tt.tiles)
	}
}
