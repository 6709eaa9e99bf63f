package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const healthCheckTimeout = 30 * time.Second

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipLLM bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Summarize configuration and probe the LLM endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			configStatus := ctx.configPath
			if !ctx.configSeen {
				configStatus += " (not found, using defaults)"
			}
			fmt.Fprintln(out, "Configuration")
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configStatus, colorize))
			fmt.Fprintln(out, renderStatusLine("Bind", statusInfo, cfg.Server.Bind, colorize))
			authKind, authMsg := statusOK, "enabled"
			if !cfg.AuthEnabled() {
				authKind, authMsg = statusWarn, "disabled"
			}
			fmt.Fprintln(out, renderStatusLine("API auth", authKind, authMsg, colorize))

			fmt.Fprintln(out, "Credentials")
			missing := 0
			for _, key := range []struct {
				label    string
				value    string
				required bool
			}{
				{"Vision OCR", cfg.OCR.APIKey, true},
				{"OpenRouter", cfg.LLM.APIKey, true},
				{"TMDB", cfg.TMDB.APIKey, true},
				{"Google Books", cfg.Books.APIKey, false},
			} {
				switch {
				case key.value != "":
					fmt.Fprintln(out, renderStatusLine(key.label, statusOK, "configured", colorize))
				case key.required:
					missing++
					fmt.Fprintln(out, renderStatusLine(key.label, statusError, "missing", colorize))
				default:
					fmt.Fprintln(out, renderStatusLine(key.label, statusInfo, "not set (anonymous quota)", colorize))
				}
			}

			fmt.Fprintln(out, "LLM")
			fmt.Fprintln(out, renderStatusLine("Model", statusInfo, cfg.LLM.Model, colorize))
			var probeErr error
			if skipLLM {
				fmt.Fprintln(out, renderStatusLine("Health", statusInfo, "skipped", colorize))
			} else {
				components, _, err := ctx.components()
				if err != nil {
					return err
				}
				probeCtx, cancel := context.WithTimeout(requestContext(cmd), healthCheckTimeout)
				probeErr = components.LLM.HealthCheck(probeCtx)
				cancel()
				if probeErr != nil {
					fmt.Fprintln(out, renderStatusLine("Health", statusError, probeErr.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Health", statusOK, "responding", colorize))
				}
			}

			if probeErr != nil {
				return fmt.Errorf("llm health check failed: %w", probeErr)
			}
			if missing > 0 {
				return fmt.Errorf("%d required API key(s) missing", missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipLLM, "skip-llm", false, "Skip the LLM health probe")
	return cmd
}
