package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-stamper/internal/imageio"
	"github.com/kozaktomas/photo-stamper/internal/pipeline"
	"github.com/kozaktomas/photo-stamper/internal/status"
)

var processCmd = &cobra.Command{
	Use:   "process <image-folder> <template-folder>",
	Short: "Stamp every photo of a folder with its matching template",
	Long: `Build the template library from the template folder, then stamp every
.png, .jpg and .jpeg photo below the image folder with the template whose
mark colours match best. Stamped photos are written to ../output and photos
that cannot be matched are copied to ../error, both next to the image folder.`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	addMatchingFlags(processCmd)
	processCmd.Flags().String("output", "", "Output folder (default: <image-folder>/../output)")
	processCmd.Flags().String("error-dir", "", "Error folder (default: <image-folder>/../error)")
	processCmd.Flags().Bool("verbose", false, "Print every status event instead of a progress bar")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, quantizer, loc, err := matchingComponents(cfg)
	if err != nil {
		return err
	}

	verbose := mustGetBool(cmd, "verbose")
	opts := pipeline.Options{
		ImageDir:    args[0],
		TemplateDir: args[1],
		OutputDir:   cfg.Output.Dir,
		ErrorDir:    cfg.Output.ErrorDir,
		Policy:      policy,
		Quantizer:   quantizer,
		Locator:     loc,
		LogFile:     cfg.Output.LogFile,
	}
	if out := mustGetString(cmd, "output"); out != "" {
		opts.OutputDir = out
	}
	if errDir := mustGetString(cmd, "error-dir"); errDir != "" {
		opts.ErrorDir = errDir
	}

	var reporter status.Reporter = status.Console{}
	if !verbose {
		var bar *progressbar.ProgressBar
		reporter = status.ReporterFunc(func(e status.Event) {
			if e.Status == status.Error {
				if bar != nil {
					_ = bar.Clear()
				}
				status.Console{}.Report(e)
			}
		})
		opts.OnProgress = func(p pipeline.ProgressInfo) {
			if bar == nil {
				bar = progressbar.NewOptions(p.Total,
					progressbar.OptionSetDescription("Stamping"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("images"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}
			_ = bar.Set(p.Current)
		}
		defer func() {
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
		}()
	}

	runner := pipeline.NewRunner(pipeline.Deps{
		Compositor: imageio.NewCompositor(cfg.Output.JPEGQuality),
		Reporter:   reporter,
	})

	fmt.Printf("Processing %s with templates from %s (policy: %s)\n",
		filepath.Clean(args[0]), filepath.Clean(args[1]), policy)

	res, err := runner.Run(opts)
	if err != nil {
		return err
	}

	fmt.Printf("\nTemplates: %d\n", res.Templates)
	fmt.Printf("Stamped:   %d -> %s\n", res.Succeeded, res.OutputDir)
	fmt.Printf("Failed:    %d -> %s\n", res.Failed, res.ErrorDir)
	return nil
}
