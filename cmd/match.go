package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/imageio"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
)

var matchCmd = &cobra.Command{
	Use:   "match <image> <template-folder>",
	Short: "Score one photo against the templates without stamping it",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	addMatchingFlags(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, quantizer, loc, err := matchingComponents(cfg)
	if err != nil {
		return err
	}

	sources, err := imageio.ListTemplates(args[1])
	if err != nil {
		return err
	}
	extractor := colour.NewExtractor(quantizer)
	lib, err := matcher.Build(sources, imageio.FileDecoder{}, matcher.Options{Locator: loc, Extractor: extractor})
	if err != nil {
		return fmt.Errorf("building template library: %w", err)
	}

	buf, err := imageio.FileDecoder{}.Decode(args[0])
	if err != nil {
		return err
	}

	res, err := matcher.New(extractor, policy).Match(lib, buf)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%dx%d), policy %s\n\n", filepath.Base(args[0]), buf.Width(), buf.Height(), policy)
	for _, score := range res.Scores {
		marker := " "
		if score.Template == res.Selected {
			marker = "*"
		}
		fmt.Printf("%s %-24s total %10.2f\n", marker, filepath.Base(score.Template.Source), score.Total)
		for i, mark := range score.Template.Marks {
			fmt.Printf("    mark %d: image %s template %s distance %.2f\n",
				i+1, score.Colors[i].Hex(), mark.Color.Hex(), score.Distances[i])
		}
	}
	fmt.Printf("\nSelected template: %s\n", res.Selected.Source)
	return nil
}
