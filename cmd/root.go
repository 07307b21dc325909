package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardpress",
	Short: "Asset pipeline for memory card game artwork",
	Long: `Cardpress prepares the card-face art for a memory card game.
It resolves character image URLs, downloads the raw artwork, and batch-processes
the images into uniform pixel-art PNG cards ready to use as card faces.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
