package cmd

import (
	"fmt"

	"github.com/arcanaland/cardpress/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the asset tree and config file",
	Run: func(cmd *cobra.Command, args []string) {
		// Initialize config
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error initializing config: %v\n", err)
			return
		}

		// Create the asset directories if they don't exist
		if err := cfg.EnsureDirs(); err != nil {
			fmt.Printf("Error creating asset tree: %v\n", err)
			return
		}

		fmt.Println("Asset tree initialized at:", cfg.AssetRoot)
		fmt.Println("Put the cards manifest at:", cfg.CardsPath())
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
