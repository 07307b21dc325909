package cmd

import (
	"fmt"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/manifest"
	"github.com/arcanaland/cardpress/internal/wookiee"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Populate the sources manifest with character image URLs",
	Long: `Sources fills in the URL of every card in the sources manifest by querying
the Wookieepedia page image for the character. A few slugs carry explicit URL
overrides where the page image would duplicate another card's art.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		set, err := manifest.LoadSources(cfg.SourcesPath())
		if err != nil {
			return fmt.Errorf("error loading sources manifest: %v", err)
		}

		client := wookiee.NewClient()

		failures := 0
		for i := range set.Cards {
			entry := &set.Cards[i]
			if entry.Slug == "" {
				failures++
				continue
			}

			imageURL, err := client.Resolve(entry.Slug)
			if err != nil {
				colorize.Red("failed %s: %v", entry.Slug, err)
				entry.URL = ""
				failures++
				continue
			}
			entry.URL = imageURL
			fmt.Printf("set %s: %s\n", entry.Slug, entry.URL)
		}

		if err := set.Save(cfg.SourcesPath()); err != nil {
			return err
		}

		fmt.Printf("\nUpdated: %s\n", cfg.SourcesPath())
		if failures > 0 {
			return fmt.Errorf("completed with %d failures", failures)
		}
		fmt.Println("Completed successfully.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(sourcesCmd)
}
