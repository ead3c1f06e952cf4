package main

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/caption"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/fonts"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/imageio"
)

type renderFlags struct {
	image        string
	video        string
	title        string
	output       string
	seek         float64
	fontPath     string
	fontSize     int
	textColor    string
	strokeColor  string
	strokeOffset int
	padding      float64
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Caption a single image or video frame",
		Long: "Render one cover. The source is either a still image (--image) or a\n" +
			"frame taken from a video (--video). Without --title the title is derived\n" +
			"from the source file name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if (flags.image == "") == (flags.video == "") {
				return errors.New("exactly one of --image or --video is required")
			}
			if strings.TrimSpace(flags.output) == "" {
				return errors.New("--output is required")
			}

			render, err := applyRenderFlags(cmd, cfg.Render, flags)
			if err != nil {
				return err
			}
			if err := render.Validate(); err != nil {
				return err
			}

			source := flags.image
			var img image.Image
			if flags.video != "" {
				source = flags.video
				seek := cfg.Batch.SeekSeconds
				if cmd.Flags().Changed("seek") {
					seek = flags.seek
				}
				img, err = framesource.NewFFmpeg().ExtractFrame(cmd.Context(), flags.video, seek)
			} else {
				img, err = imageio.Load(flags.image)
			}
			if err != nil {
				return err
			}

			title := flags.title
			if !cmd.Flags().Changed("title") {
				title = batch.Title(filepath.Base(source))
			}

			font, err := fonts.Load(render.FontPath)
			if err != nil {
				return err
			}
			style, err := render.Style()
			if err != nil {
				return err
			}
			captioner, err := caption.New(font, style)
			if err != nil {
				return err
			}
			defer captioner.Close()

			canvas := imageio.ToDrawable(imageio.FitWidth(img, cfg.Batch.MaxWidth))
			block, err := captioner.Apply(canvas, title)
			if err != nil {
				return err
			}
			if err := imageio.Save(flags.output, canvas, cfg.Batch.Quality); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d lines)\n", flags.output, len(block.Lines))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "Still image to caption")
	cmd.Flags().StringVar(&flags.video, "video", "", "Video to take the frame from")
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "Title text")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (.jpg or .png)")
	cmd.Flags().Float64Var(&flags.seek, "seek", 0, "Seconds into the video to take the frame from")
	cmd.Flags().StringVar(&flags.fontPath, "font", "", "Font file for the title")
	cmd.Flags().IntVar(&flags.fontSize, "font-size", 0, "Font size in pixels")
	cmd.Flags().StringVar(&flags.textColor, "text-color", "", "Fill color (#rrggbb or r,g,b)")
	cmd.Flags().StringVar(&flags.strokeColor, "stroke-color", "", "Outline color (#rrggbb or r,g,b)")
	cmd.Flags().IntVar(&flags.strokeOffset, "stroke-offset", 0, "Outline thickness in pixels, 0 disables it")
	cmd.Flags().Float64Var(&flags.padding, "padding", 0, "Horizontal padding as a fraction of the width")
	return cmd
}

func applyRenderFlags(cmd *cobra.Command, render config.Render, flags renderFlags) (config.Render, error) {
	set := cmd.Flags().Changed
	if set("font") {
		path, err := config.ExpandPath(flags.fontPath)
		if err != nil {
			return render, fmt.Errorf("resolve font path: %w", err)
		}
		render.FontPath = path
	}
	if set("font-size") {
		render.FontSize = flags.fontSize
	}
	if set("text-color") {
		render.TextColor = flags.textColor
	}
	if set("stroke-color") {
		render.StrokeColor = flags.strokeColor
	}
	if set("stroke-offset") {
		render.StrokeOffset = flags.strokeOffset
	}
	if set("padding") {
		render.PaddingRatio = flags.padding
	}
	return render, nil
}
