package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediaextract/internal/config"
	"mediaextract/internal/media"
	"mediaextract/internal/pipeline"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var imagePath string
	var query string
	var jsonOutput bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the full pipeline against an image and/or query text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			in := pipeline.Input{Query: strings.TrimSpace(query)}
			if path := strings.TrimSpace(imagePath); path != "" {
				image, err := readImage(cfg, path)
				if err != nil {
					return err
				}
				in.Image = image
			}
			if len(in.Image) == 0 && in.Query == "" {
				return fmt.Errorf("provide --image or --query")
			}

			p, _, err := pipeline.NewFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			result, err := p.Run(requestContext(cmd), in)
			if err != nil {
				if perr, ok := media.AsPipelineError(err); ok && jsonOutput {
					if encErr := writeJSON(cmd, perr); encErr != nil {
						return encErr
					}
				}
				return fmt.Errorf("extract: %w", err)
			}

			if jsonOutput {
				if verbose {
					return writeJSON(cmd, result)
				}
				return writeJSON(cmd, result.Records)
			}

			out := cmd.OutOrStdout()
			if len(result.Records) == 0 {
				fmt.Fprintln(out, "No media found")
			} else {
				fmt.Fprintln(out, renderRecords(result.Records))
			}
			if verbose && len(result.Diagnostics) > 0 {
				fmt.Fprintf(out, "\nDropped candidates (%d):\n", len(result.Diagnostics))
				fmt.Fprintln(out, renderDiagnostics(result.Diagnostics))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Image file to OCR")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free text to classify alongside (or instead of) the image")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of a table")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include dropped-candidate diagnostics")
	return cmd
}

func readImage(cfg *config.Config, path string) ([]byte, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve image path: %w", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read image: %s is a directory", expanded)
	}
	if limit := cfg.MaxUploadBytes(); info.Size() > limit {
		return nil, fmt.Errorf("image %s is %s; limit is %s", expanded,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(limit)))
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
