package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/config"
	"github.com/kozaktomas/photo-stamper/internal/locator"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "photo-stamper",
	Short: "Stamp photos with the overlay template whose marks match their colours",
	Long: `Photo Stamper reads a folder of overlay templates, finds the two colour
marks of every template and stamps each photo of an image folder with the
template whose marks best match the colours found at the same places.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults are embedded)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// addMatchingFlags registers the flags shared by commands that extract colours.
func addMatchingFlags(cmd *cobra.Command) {
	cmd.Flags().String("policy", "", "Template selection: min (closest colours) or max (legacy, farthest colours)")
	cmd.Flags().String("quantizer", "", "Palette quantizer: mediancut, kmeans, dominant")
}

// loadConfig loads the configuration and applies command flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("policy"); f != nil && f.Changed {
		cfg.Matching.Policy = mustGetString(cmd, "policy")
	}
	if f := cmd.Flags().Lookup("quantizer"); f != nil && f.Changed {
		cfg.Matching.Quantizer = mustGetString(cmd, "quantizer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// matchingComponents resolves the configured policy, quantizer and locator.
func matchingComponents(cfg *config.Config) (matcher.Policy, colour.Quantizer, locator.Locator, error) {
	policy, err := matcher.ParsePolicy(cfg.Matching.Policy)
	if err != nil {
		return 0, nil, nil, err
	}
	q, err := colour.NewQuantizer(cfg.Matching.Quantizer)
	if err != nil {
		return 0, nil, nil, err
	}
	loc, err := locator.New(cfg.Matching.Locator)
	if err != nil {
		return 0, nil, nil, err
	}
	return policy, q, loc, nil
}
