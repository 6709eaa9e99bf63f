package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediaextract/internal/media"
	"mediaextract/internal/metadata"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var year int
	var author string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup TITLE",
		Short: "Resolve a title and fetch its catalog record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}
			if year < 0 {
				return fmt.Errorf("invalid --year %d", year)
			}
			components, _, err := ctx.components()
			if err != nil {
				return err
			}
			record := components.Router.Lookup(requestContext(cmd), metadata.LookupRequest{
				Kind:   kind,
				Title:  args[0],
				Year:   year,
				Author: author,
			})
			if jsonOutput {
				return writeJSON(cmd, record)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecords([]media.Metadata{record}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Media kind (movie, tv, book)")
	cmd.Flags().IntVar(&year, "year", 0, "Release or publication year filter")
	cmd.Flags().StringVar(&author, "author", "", "Author filter for books")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of a table")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
