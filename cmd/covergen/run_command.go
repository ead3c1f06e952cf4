package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/report"
)

type runFlags struct {
	seek        float64
	workers     int
	fontPath    string
	fontSize    int
	outputExt   string
	quality     int
	maxWidth    int
	noOverwrite bool
	dryRun      bool
	jsonOutput  bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [folder]",
		Short: "Write a captioned cover for every video in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := batch.OptionsFromConfig(cfg)
			if len(args) == 1 {
				opts.Folder = args[0]
			}
			if err := applyRunFlags(cmd, &opts, flags); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			coord := ctx.coordinator(logger)

			if flags.dryRun {
				items, err := coord.Plan(opts)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd, items)
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.PlanTable(items))
				return nil
			}

			if missing := framesource.Missing(framesource.CheckBinaries(framesource.Requirements())); len(missing) > 0 {
				return fmt.Errorf("%w: missing required binaries: %s", batch.ErrConfiguration, strings.Join(missing, ", "))
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			rep, runErr := coord.Run(runCtx, opts)
			if rep != nil {
				var printErr error
				if flags.jsonOutput {
					printErr = writeJSON(cmd, rep)
				} else {
					printErr = report.Print(cmd.OutOrStdout(), rep)
				}
				if printErr != nil && runErr == nil {
					runErr = printErr
				}
			}
			return runErr
		},
	}

	cmd.Flags().Float64Var(&flags.seek, "seek", 0, "Seconds into each video to take the frame from")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Videos processed at once")
	cmd.Flags().StringVar(&flags.fontPath, "font", "", "Font file for titles")
	cmd.Flags().IntVar(&flags.fontSize, "font-size", 0, "Title font size in pixels")
	cmd.Flags().StringVar(&flags.outputExt, "format", "", "Cover format: jpg or png")
	cmd.Flags().IntVar(&flags.quality, "quality", 0, "JPEG quality (1-100)")
	cmd.Flags().IntVar(&flags.maxWidth, "max-width", 0, "Downscale frames wider than this")
	cmd.Flags().BoolVar(&flags.noOverwrite, "no-overwrite", false, "Keep covers that already exist")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "List the covers that would be written")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

// applyRunFlags copies explicitly set flags over the configured options.
func applyRunFlags(cmd *cobra.Command, opts *batch.Options, flags runFlags) error {
	set := cmd.Flags().Changed
	if set("seek") {
		opts.Seek = flags.seek
	}
	if set("workers") {
		opts.Workers = flags.workers
	}
	if set("font") {
		path, err := config.ExpandPath(flags.fontPath)
		if err != nil {
			return fmt.Errorf("%w: resolve font path: %w", batch.ErrConfiguration, err)
		}
		opts.Render.FontPath = path
	}
	if set("font-size") {
		opts.Render.FontSize = flags.fontSize
	}
	if set("format") {
		opts.OutputExt = "." + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(flags.outputExt)), ".")
	}
	if set("quality") {
		if flags.quality < 1 || flags.quality > 100 {
			return fmt.Errorf("%w: --quality must be between 1 and 100", batch.ErrConfiguration)
		}
		opts.Quality = flags.quality
	}
	if set("max-width") {
		opts.MaxWidth = flags.maxWidth
	}
	if set("no-overwrite") {
		opts.Overwrite = !flags.noOverwrite
	}
	return nil
}
