package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaextract/internal/media"
)

func newResolveTitleCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "resolve-title TITLE",
		Short: "Canonicalize a title against the encyclopedia search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}
			components, _, err := ctx.components()
			if err != nil {
				return err
			}
			resolved := components.Resolver.Resolve(requestContext(cmd), args[0], kind)
			fmt.Fprintln(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Media kind (movie, tv, book)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func parseKindFlag(value string) (media.Kind, error) {
	kind, ok := media.ParseKind(value)
	if !ok {
		names := make([]string, 0, 3)
		for _, k := range media.Kinds() {
			names = append(names, k.String())
		}
		return "", fmt.Errorf("invalid --kind %q (expected one of %s)", value, strings.Join(names, ", "))
	}
	return kind, nil
}
