package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	AssetRoot string         `toml:"asset_root"`
	Pipeline  PipelineConfig `toml:"pipeline"`
}

// PipelineConfig holds the default processing parameters. Command-line flags
// take precedence over these values.
type PipelineConfig struct {
	Height       int `toml:"height"`
	PixelHeight  int `toml:"pixel_height"`
	Quantize     int `toml:"quantize"`
	SheetColumns int `toml:"sheet_columns"`
	SheetMargin  int `toml:"sheet_margin"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		AssetRoot: "assets",
		Pipeline: PipelineConfig{
			Height:       256,
			PixelHeight:  64,
			Quantize:     28,
			SheetColumns: 4,
			SheetMargin:  12,
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardpress", "config.toml")
}

// LoadConfig loads the config file
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	// Create default config if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	config := DefaultConfig()
	_, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("error decoding config file: %v", err)
	}

	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %v", err)
	}

	config := DefaultConfig()

	// Create the file
	file, err := os.Create(configPath)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	// Encode the config to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %v", err)
	}

	return config, nil
}

// ManifestDir returns the directory holding cards.json and sources.json
func (c *Config) ManifestDir() string {
	return filepath.Join(c.AssetRoot, "manifest")
}

// SourceDir returns the directory holding downloaded source images
func (c *Config) SourceDir() string {
	return filepath.Join(c.AssetRoot, "source")
}

// ProcessedDir returns the directory holding processed card faces
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.AssetRoot, "processed")
}

// CardsPath returns the path to the cards manifest
func (c *Config) CardsPath() string {
	return filepath.Join(c.ManifestDir(), "cards.json")
}

// SourcesPath returns the path to the sources manifest
func (c *Config) SourcesPath() string {
	return filepath.Join(c.ManifestDir(), "sources.json")
}

// EnsureDirs creates the asset directories if they are missing
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ManifestDir(), c.SourceDir(), c.ProcessedDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating asset directory %s: %v", dir, err)
		}
	}
	return nil
}
