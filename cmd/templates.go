package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/imageio"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
)

var templatesCmd = &cobra.Command{
	Use:   "templates <template-folder>",
	Short: "Show the marks and colours found in every template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)

	addMatchingFlags(templatesCmd)
	templatesCmd.Flags().String("export", "", "Write the template library as YAML to this file")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, quantizer, loc, err := matchingComponents(cfg)
	if err != nil {
		return err
	}

	sources, err := imageio.ListTemplates(args[0])
	if err != nil {
		return err
	}

	lib, err := matcher.Build(sources, imageio.FileDecoder{}, matcher.Options{
		Locator:   loc,
		Extractor: colour.NewExtractor(quantizer),
	})
	if err != nil {
		return fmt.Errorf("building template library: %w", err)
	}

	fmt.Printf("Found %d templates in %s\n\n", lib.Len(), args[0])
	for _, rec := range lib.Records() {
		fmt.Printf("%s (%dx%d)\n", filepath.Base(rec.Source), rec.Width, rec.Height)
		for i, mark := range rec.Marks {
			fmt.Printf("  mark %d: %-16s %s\n", i+1, mark.Rect, mark.Color.Hex())
		}
	}

	if path := mustGetString(cmd, "export"); path != "" {
		data, err := yaml.Marshal(lib)
		if err != nil {
			return fmt.Errorf("encoding library: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("\nLibrary written to %s\n", path)
	}
	return nil
}
