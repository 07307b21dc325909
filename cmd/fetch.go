package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/fetch"
	"github.com/arcanaland/cardpress/internal/manifest"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download raw source images for all cards",
	Long: `Fetch downloads the raw artwork listed in the sources manifest into the
source directory. Files that already exist are left alone unless --force is
given, and responses without an image Content-Type are rejected.

Examples:
  cardpress fetch
  cardpress fetch --force --timeout 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		force, _ := cmd.Flags().GetBool("force")
		timeout, _ := cmd.Flags().GetFloat64("timeout")

		sources, err := manifest.LoadSources(cfg.SourcesPath())
		if err != nil {
			return fmt.Errorf("error loading sources manifest: %v", err)
		}
		if len(sources.Cards) == 0 {
			return fmt.Errorf("no cards found in sources manifest")
		}

		if err := os.MkdirAll(cfg.SourceDir(), 0755); err != nil {
			return fmt.Errorf("error creating source directory: %v", err)
		}

		fetcher, err := fetch.New(time.Duration(timeout * float64(time.Second)))
		if err != nil {
			return err
		}

		success := 0
		skipped := 0
		failed := 0

		for _, entry := range sources.Cards {
			if entry.Slug == "" {
				fmt.Printf("Skipping entry without slug: %q\n", entry.Name)
				skipped++
				continue
			}
			if entry.URL == "" {
				fmt.Printf("Skipping %s: missing URL in sources manifest.\n", entry.Slug)
				skipped++
				continue
			}

			destination := fetch.DestName(cfg.SourceDir(), entry.Slug, entry.URL)
			if _, err := os.Stat(destination); err == nil && !force {
				fmt.Printf("Skipping existing file: %s\n", destination)
				skipped++
				continue
			}

			name := entry.Name
			if name == "" {
				name = entry.Slug
			}
			if err := fetcher.Download(entry.URL, destination); err != nil {
				colorize.Red("Failed %s: %v", entry.Slug, err)
				failed++
				continue
			}
			fmt.Printf("Downloaded %s -> %s\n", name, destination)
			success++
		}

		fmt.Printf("\nDone. success=%d skipped=%d failed=%d (source dir: %s)\n",
			success, skipped, failed, cfg.SourceDir())
		if failed > 0 {
			return fmt.Errorf("%d downloads failed", failed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Bool("force", false, "Overwrite files if they already exist")
	fetchCmd.Flags().Float64("timeout", 20.0, "HTTP timeout in seconds")
}
