package cmd

import (
	"fmt"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/manifest"
	"github.com/arcanaland/cardpress/internal/pipeline"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert source images into pixel-art card faces",
	Long: `Process converts every downloaded source image into a uniform pixel-art PNG card.

Each card is center-cropped to the 3:4 card ratio, downscaled to a coarse pixel
grid, reduced to a small color palette, and upscaled back to the final size.
Both rescales keep hard pixel edges. Cards whose source image is missing or
unreadable are reported and skipped; the rest of the batch still runs.

Examples:
  cardpress process
  cardpress process --height 256 --pixel-height 64 --quantize 24
  cardpress process --contact-sheet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		height, _ := cmd.Flags().GetInt("height")
		pixelHeight, _ := cmd.Flags().GetInt("pixel-height")
		quantizeCount, _ := cmd.Flags().GetInt("quantize")
		contactSheet, _ := cmd.Flags().GetBool("contact-sheet")

		// Config supplies defaults for flags the user did not set
		if !cmd.Flags().Changed("height") && cfg.Pipeline.Height > 0 {
			height = cfg.Pipeline.Height
		}
		if !cmd.Flags().Changed("pixel-height") && cfg.Pipeline.PixelHeight > 0 {
			pixelHeight = cfg.Pipeline.PixelHeight
		}
		if !cmd.Flags().Changed("quantize") && cfg.Pipeline.Quantize > 0 {
			quantizeCount = cfg.Pipeline.Quantize
		}

		options := pipeline.Options{
			FinalHeight: height,
			PixelHeight: pixelHeight,
			Quantize:    quantizeCount,
		}
		if err := options.Validate(); err != nil {
			return err
		}

		cards, err := manifest.LoadCards(cfg.CardsPath())
		if err != nil {
			return fmt.Errorf("failed to load cards manifest: %v", err)
		}

		processor := &pipeline.Processor{
			SourceDir:    cfg.SourceDir(),
			ProcessedDir: cfg.ProcessedDir(),
			Options:      options,
			SheetColumns: cfg.Pipeline.SheetColumns,
			SheetMargin:  cfg.Pipeline.SheetMargin,
		}

		result, err := processor.Run(cards)
		if err != nil {
			return err
		}

		for _, output := range result.Outputs {
			fmt.Printf("Processed %s -> %s\n", output.Card.Name, output.Path)
		}
		for _, failure := range result.Failures {
			colorize.Red("Failed %s: %v", failure.Slug, failure.Err)
		}

		if contactSheet {
			sheetPath, err := processor.ContactSheet(result.Paths())
			if err != nil {
				return fmt.Errorf("error building contact sheet: %v", err)
			}
			if sheetPath != "" {
				fmt.Printf("Generated contact sheet -> %s\n", sheetPath)
			}
		}

		fmt.Printf("\nDone. processed=%d failed=%d\n", len(result.Outputs), len(result.Failures))
		if len(result.Failures) > 0 {
			return fmt.Errorf("%d of %d cards failed", len(result.Failures), len(cards))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(processCmd)

	processCmd.Flags().Int("height", 256, "Final card face height in pixels")
	processCmd.Flags().Int("pixel-height", 64, "Intermediate downscale height used for the blocky pixel look")
	processCmd.Flags().Int("quantize", 28, "Palette color count used before the final upscale")
	processCmd.Flags().Bool("contact-sheet", false, "Also write a contact_sheet.png preview grid")
}
